// Package analysis profiles the review table and runs the descriptive
// value analysis over points and prices.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
)

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical|text
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Report is a column-by-column profile of a table.
type Report struct {
	Name       string
	Rows       int
	Duplicates int
	Cols       []ColumnSummary
}

// textThreshold is the unique-value ratio above which a column is treated
// as free text rather than a category.
const textThreshold = 0.5

// Profile summarizes every column of t except the id. topN bounds the
// number of top values kept per categorical column (default 8).
func Profile(t *dataset.Table, topN int) *Report {
	if topN <= 0 {
		topN = 8
	}
	rep := &Report{Name: t.Name, Rows: t.Len(), Duplicates: dataset.DuplicateCount(t)}
	for j := 1; j < len(t.Columns); j++ {
		rep.Cols = append(rep.Cols, summarize(t, j, topN))
	}
	return rep
}

func summarize(t *dataset.Table, j, topN int) ColumnSummary {
	s := ColumnSummary{Name: t.Columns[j]}
	cats := map[string]int{}
	// numeric stats via Welford
	var n int
	var mean, m2 float64
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, row := range t.Rows {
		v := ""
		if j < len(row) {
			v = row[j]
		}
		if dataset.IsMissing(v) {
			s.Missing++
			continue
		}
		s.NonNull++
		cats[v]++
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		n++
		minV = math.Min(minV, x)
		maxV = math.Max(maxV, x)
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	s.Unique = len(cats)

	switch {
	case s.NonNull > 0 && n == s.NonNull:
		s.Kind = "numeric"
		s.Min, s.Max, s.Mean = minV, maxV, mean
		if n > 1 {
			s.Std = math.Sqrt(m2 / float64(n-1))
		}
	case s.NonNull > 0 && float64(s.Unique)/float64(s.NonNull) > textThreshold:
		s.Kind = "text"
	default:
		s.Kind = "categorical"
	}
	if s.Kind != "text" {
		s.TopValues = topCounts(cats, topN)
	}
	return s
}

func topCounts(m map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(m))
	for k, v := range m {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// Column returns the summary of a column by name.
func (r *Report) Column(name string) (ColumnSummary, bool) {
	for _, c := range r.Cols {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

// Markdown renders the profile for the terminal.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\nDuplicate rows: %d\nColumns: %d\n\n", r.Rows, r.Duplicates, len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)", c.Name, c.Kind, c.NonNull, missPct, c.Unique))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(" min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(" top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
