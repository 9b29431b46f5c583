package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column names of the wine review file.
const (
	ColDescription = "description"
	ColProvince    = "province"
	ColVariety     = "variety"
	ColCountry     = "country"
	ColPoints      = "points"
	ColPrice       = "price"
	ColTitle       = "title"
)

// ErrEmptySelection is returned when no row survives class selection.
var ErrEmptySelection = errors.New("no rows match the class allow-list")

// MissingColumnError indicates a required column is absent from the table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("column %q not found in %s", e.Column, e.Table)
	}
	return fmt.Sprintf("column %q not found", e.Column)
}

// Review is one wine review. Points and Price are zero when absent;
// HasPoints and HasPrice distinguish a missing or unparseable value from a
// zero one.
type Review struct {
	ID          int
	Description string
	Province    string
	Variety     string
	Country     string
	Title       string
	Points      float64
	Price       float64
	HasPoints   bool
	HasPrice    bool
	// Label is the composite province/variety label, set by BuildLabels.
	Label string
}

// Reviews maps table rows to Review records. description, province and
// variety are required columns; the others are optional.
func Reviews(t *Table) ([]Review, error) {
	idx := map[string]int{}
	for _, c := range []string{ColDescription, ColProvince, ColVariety} {
		j := t.Index(c)
		if j < 0 {
			return nil, &MissingColumnError{Table: t.Name, Column: c}
		}
		idx[c] = j
	}
	for _, c := range []string{ColCountry, ColPoints, ColPrice, ColTitle} {
		idx[c] = t.Index(c)
	}
	get := func(row []string, c string) string {
		j := idx[c]
		if j < 0 || j >= len(row) || IsMissing(row[j]) {
			return ""
		}
		return row[j]
	}

	out := make([]Review, 0, len(t.Rows))
	for i, row := range t.Rows {
		id, err := strconv.Atoi(row[0])
		if err != nil {
			id = i
		}
		r := Review{
			ID:          id,
			Description: get(row, ColDescription),
			Province:    get(row, ColProvince),
			Variety:     get(row, ColVariety),
			Country:     get(row, ColCountry),
			Title:       get(row, ColTitle),
		}
		if v := get(row, ColPoints); v != "" {
			if p, err := strconv.ParseFloat(v, 64); err == nil {
				r.Points = p
				r.HasPoints = true
			}
		}
		if v := strings.TrimPrefix(get(row, ColPrice), "$"); v != "" {
			if p, err := strconv.ParseFloat(v, 64); err == nil {
				r.Price = p
				r.HasPrice = true
			}
		}
		out = append(out, r)
	}
	return out, nil
}
