package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
	"github.com/KaramelBytes/sommelier-cli/internal/selection"
)

// LabelTally renders composite label counts, at most top rows (0 = all).
func LabelTally(counts []dataset.LabelCount, top int) string {
	var b strings.Builder
	b.WriteString("[LABEL COUNTS]\n")
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	n := len(counts)
	if top > 0 && top < n {
		n = top
	}
	for _, c := range counts[:n] {
		pct := 0.0
		if total > 0 {
			pct = float64(c.Count) * 100 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", c.Label, c.Count, pct))
	}
	if n < len(counts) {
		b.WriteString(fmt.Sprintf("(%d more labels)\n", len(counts)-n))
	}
	return b.String()
}

// CleanSummary renders what the cleaner dropped.
func CleanSummary(st dataset.CleanStats) string {
	return fmt.Sprintf("[CLEANING]\nRows: %d\nDuplicates dropped: %d\nMissing province/variety dropped: %d\nKept: %d\n",
		st.Rows, st.Duplicates, st.Missing, st.Kept)
}

// Search renders the top candidates of a grid search by mean macro F1.
func Search(res *selection.SearchResult, top int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[GRID SEARCH] %d candidates, %d folds, macro F1\n", len(res.Results), res.Folds))
	order := make([]int, len(res.Results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, c int) bool {
		ma, mc := res.Results[order[a]].Mean, res.Results[order[c]].Mean
		if math.IsNaN(mc) {
			return !math.IsNaN(ma)
		}
		if math.IsNaN(ma) {
			return false
		}
		return ma > mc
	})
	if top <= 0 || top > len(order) {
		top = len(order)
	}
	for rank, i := range order[:top] {
		r := res.Results[i]
		mark := " "
		if i == res.Best {
			mark = "*"
		}
		if r.Err != nil {
			b.WriteString(fmt.Sprintf("%s%2d. failed  %s (%v)\n", mark, rank+1, r.Candidate, r.Err))
			continue
		}
		b.WriteString(fmt.Sprintf("%s%2d. %.4f ± %.4f  %s\n", mark, rank+1, r.Mean, r.Std, r.Candidate))
	}
	return b.String()
}

// Descriptor renders per-class descriptor lists.
func Descriptor(ds []ClassDescriptors) string {
	var b strings.Builder
	b.WriteString("[DESCRIPTORS]\n")
	for _, d := range ds {
		terms := make([]string, len(d.Terms))
		for i, t := range d.Terms {
			terms[i] = t.Term
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", d.Label, strings.Join(terms, ", ")))
	}
	return b.String()
}

// Scores renders per-class held-out scores.
func Scores(scores []selection.ClassScore, labels []string) string {
	var b strings.Builder
	b.WriteString("| label | precision | recall | f1 | support |\n| --- | --- | --- | --- | --- |\n")
	for _, s := range scores {
		name := fmt.Sprintf("#%d", s.Class)
		if s.Class >= 0 && s.Class < len(labels) {
			name = labels[s.Class]
		}
		b.WriteString(fmt.Sprintf("| %s | %.3f | %.3f | %.3f | %d |\n", name, s.Precision, s.Recall, s.F1, s.Support))
	}
	return b.String()
}

// Predictions renders input texts next to their predicted labels.
func Predictions(texts, labels []string) string {
	var b strings.Builder
	b.WriteString("[PREDICTIONS]\n")
	for i := range texts {
		t := texts[i]
		if r := []rune(t); len(r) > 80 {
			t = string(r[:77]) + "..."
		}
		b.WriteString(fmt.Sprintf("- %s\n  → %s\n", t, labels[i]))
	}
	return b.String()
}
