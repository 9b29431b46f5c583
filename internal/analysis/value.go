package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
)

// ValueOptions controls the value analysis.
type ValueOptions struct {
	// GroupBy is country, province or variety.
	GroupBy string
	// MinCount drops groups with fewer reviews.
	MinCount int
	// Top bounds the group and best-value listings.
	Top int
}

// DefaultValueOptions groups by country, keeps groups of 50+ reviews and
// lists 15 rows.
func DefaultValueOptions() ValueOptions {
	return ValueOptions{GroupBy: dataset.ColCountry, MinCount: 50, Top: 15}
}

// GroupValue aggregates points and price for one group key.
type GroupValue struct {
	Key        string
	Count      int
	Priced     int
	MeanPoints float64
	MeanPrice  float64
	// MeanPoints is over reviews with a score. MeanValue is the mean of
	// points per dollar over reviews with both a score and a price.
	MeanValue float64
}

// PriceBand is the mean score of reviews in a price range [Low, High).
// High is zero for the open-ended top band.
type PriceBand struct {
	Low, High  float64
	Count      int
	MeanPoints float64
}

// BestBuy is a review ranked by points per dollar.
type BestBuy struct {
	ID     int
	Title  string
	Points float64
	Price  float64
	Value  float64
}

// ValueReport is the outcome of Value.
type ValueReport struct {
	GroupBy string
	Rows    int
	Priced  int
	// Corr is the Pearson correlation of price and points over priced rows.
	Corr      float64
	Groups    []GroupValue
	Bands     []PriceBand
	BestValue []BestBuy
}

var priceBands = []float64{0, 15, 30, 50, 100, 0}

// Value aggregates points and price per group, across price bands and per
// review. Reviews without a price count toward Count and MeanPoints only;
// reviews without a score are left out of every points statistic.
func Value(reviews []dataset.Review, opt ValueOptions) (*ValueReport, error) {
	key, err := groupKey(opt.GroupBy)
	if err != nil {
		return nil, err
	}
	if opt.Top <= 0 {
		opt.Top = 15
	}
	rep := &ValueReport{GroupBy: strings.ToLower(opt.GroupBy), Rows: len(reviews)}

	type acc struct {
		n, scored, priced, valued int
		points, price, valueSum   float64
	}
	groups := map[string]*acc{}
	bands := make([]PriceBand, len(priceBands)-1)
	for i := range bands {
		bands[i] = PriceBand{Low: priceBands[i], High: priceBands[i+1]}
	}
	var pairs int
	var sx, sy, sxx, syy, sxy float64
	var buys []BestBuy

	for _, r := range reviews {
		k := key(r)
		if k == "" {
			continue
		}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		if r.HasPoints {
			a.scored++
			a.points += r.Points
		}
		if !r.HasPrice || r.Price <= 0 {
			continue
		}
		a.priced++
		a.price += r.Price
		rep.Priced++
		if !r.HasPoints {
			continue
		}
		v := r.Points / r.Price
		a.valued++
		a.valueSum += v
		pairs++
		sx += r.Price
		sy += r.Points
		sxx += r.Price * r.Price
		syy += r.Points * r.Points
		sxy += r.Price * r.Points
		for i := range bands {
			if r.Price >= bands[i].Low && (bands[i].High == 0 || r.Price < bands[i].High) {
				bands[i].Count++
				bands[i].MeanPoints += r.Points
				break
			}
		}
		buys = append(buys, BestBuy{ID: r.ID, Title: r.Title, Points: r.Points, Price: r.Price, Value: v})
	}

	if n := float64(pairs); n >= 2 {
		denom := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
		if denom != 0 {
			rep.Corr = math.Max(-1, math.Min(1, (n*sxy-sx*sy)/denom))
		}
	}
	for i := range bands {
		if bands[i].Count > 0 {
			bands[i].MeanPoints /= float64(bands[i].Count)
		}
	}
	rep.Bands = bands

	for k, a := range groups {
		if a.n < opt.MinCount {
			continue
		}
		g := GroupValue{Key: k, Count: a.n, Priced: a.priced}
		if a.scored > 0 {
			g.MeanPoints = a.points / float64(a.scored)
		}
		if a.priced > 0 {
			g.MeanPrice = a.price / float64(a.priced)
		}
		if a.valued > 0 {
			g.MeanValue = a.valueSum / float64(a.valued)
		}
		rep.Groups = append(rep.Groups, g)
	}
	sort.Slice(rep.Groups, func(i, j int) bool {
		if rep.Groups[i].MeanPoints == rep.Groups[j].MeanPoints {
			return rep.Groups[i].Key < rep.Groups[j].Key
		}
		return rep.Groups[i].MeanPoints > rep.Groups[j].MeanPoints
	})

	sort.SliceStable(buys, func(i, j int) bool {
		if buys[i].Value == buys[j].Value {
			return buys[i].Points > buys[j].Points
		}
		return buys[i].Value > buys[j].Value
	})
	if len(buys) > opt.Top {
		buys = buys[:opt.Top]
	}
	rep.BestValue = buys
	return rep, nil
}

func groupKey(by string) (func(dataset.Review) string, error) {
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "", dataset.ColCountry:
		return func(r dataset.Review) string { return r.Country }, nil
	case dataset.ColProvince:
		return func(r dataset.Review) string { return r.Province }, nil
	case dataset.ColVariety:
		return func(r dataset.Review) string { return r.Variety }, nil
	}
	return nil, fmt.Errorf("unsupported group-by %q (use country, province or variety)", by)
}

// Markdown renders the value report for the terminal.
func (r *ValueReport) Markdown(top int) string {
	var b strings.Builder
	b.WriteString("[VALUE SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Reviews: %d (priced %d)\n", r.Rows, r.Priced))
	b.WriteString(fmt.Sprintf("Price ~ points: r=%.3f\n\n", r.Corr))

	b.WriteString("[PRICE BANDS]\n")
	for _, band := range r.Bands {
		rng := fmt.Sprintf("$%.0f-$%.0f", band.Low, band.High)
		if band.High == 0 {
			rng = fmt.Sprintf("$%.0f+", band.Low)
		}
		b.WriteString(fmt.Sprintf("- %s: n=%d, mean points %.2f\n", rng, band.Count, band.MeanPoints))
	}

	b.WriteString(fmt.Sprintf("\n[BY %s]\n", strings.ToUpper(r.GroupBy)))
	groups := r.Groups
	if top > 0 && len(groups) > top {
		groups = groups[:top]
	}
	for _, g := range groups {
		b.WriteString(fmt.Sprintf("- %s (n=%d): points %.2f, price $%.2f, points/$ %.3f\n", safeVal(g.Key), g.Count, g.MeanPoints, g.MeanPrice, g.MeanValue))
	}

	b.WriteString("\n[BEST VALUE]\n")
	for _, bb := range r.BestValue {
		title := bb.Title
		if title == "" {
			title = fmt.Sprintf("#%d", bb.ID)
		}
		b.WriteString(fmt.Sprintf("- %s: %.0f points at $%.2f (%.2f points/$)\n", safeVal(title), bb.Points, bb.Price, bb.Value))
	}
	return b.String()
}
