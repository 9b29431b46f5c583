// Package selection scores and selects vectorizer+classifier configurations
// by stratified k-fold cross-validation.
package selection

import (
	"fmt"
	"sort"
)

// ClassScore holds per-class precision, recall and F1.
type ClassScore struct {
	Class     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// PerClass computes precision, recall and F1 for every class that appears
// in either truth or pred, ordered by class code. Undefined ratios are 0.
func PerClass(truth, pred []int) ([]ClassScore, error) {
	if len(truth) != len(pred) {
		return nil, fmt.Errorf("score: %d labels but %d predictions", len(truth), len(pred))
	}
	tp := map[int]int{}
	fp := map[int]int{}
	fn := map[int]int{}
	seen := map[int]struct{}{}
	for i := range truth {
		t, p := truth[i], pred[i]
		seen[t] = struct{}{}
		seen[p] = struct{}{}
		if t == p {
			tp[t]++
			continue
		}
		fp[p]++
		fn[t]++
	}
	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	out := make([]ClassScore, 0, len(classes))
	for _, c := range classes {
		s := ClassScore{Class: c, Support: tp[c] + fn[c]}
		if d := tp[c] + fp[c]; d > 0 {
			s.Precision = float64(tp[c]) / float64(d)
		}
		if d := tp[c] + fn[c]; d > 0 {
			s.Recall = float64(tp[c]) / float64(d)
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		out = append(out, s)
	}
	return out, nil
}

// MacroF1 is the unweighted mean of per-class F1 scores, so that small
// classes count as much as large ones.
func MacroF1(truth, pred []int) (float64, error) {
	scores, err := PerClass(truth, pred)
	if err != nil {
		return 0, err
	}
	if len(scores) == 0 {
		return 0, nil
	}
	var sum float64
	for _, s := range scores {
		sum += s.F1
	}
	return sum / float64(len(scores)), nil
}

// Accuracy is the fraction of exact matches.
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 || len(truth) != len(pred) {
		return 0
	}
	n := 0
	for i := range truth {
		if truth[i] == pred[i] {
			n++
		}
	}
	return float64(n) / float64(len(truth))
}
