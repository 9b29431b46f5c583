package selection

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Fold is one train/test partition of row indices.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold splits rows into k folds that keep class proportions.
// Rows of each class are dealt round-robin to folds in input order, so the
// split is deterministic.
func StratifiedKFold(y []int, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("kfold: need k >= 2, got %d", k)
	}
	if k > len(y) {
		return nil, fmt.Errorf("kfold: k=%d exceeds %d rows", k, len(y))
	}
	assign := make([]int, len(y))
	next := map[int]int{}
	// Keep the deal continuing across classes so small classes do not all
	// land in fold 0.
	offset := 0
	for _, c := range classOrder(y) {
		next[c] = offset
		for i, yc := range y {
			if yc != c {
				continue
			}
			assign[i] = next[c] % k
			next[c]++
		}
		offset = next[c] % k
	}

	folds := make([]Fold, k)
	for i, f := range assign {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}

// TrainTestSplit holds out roughly frac of each class as a test set, using
// seed for the per-class shuffle. Each class keeps at least one training row.
// Both index lists are returned sorted.
func TrainTestSplit(y []int, frac float64, seed int64) (train, test []int, err error) {
	if frac <= 0 || frac >= 1 {
		return nil, nil, fmt.Errorf("split: test fraction must be in (0,1), got %g", frac)
	}
	rng := rand.New(rand.NewSource(seed))
	byClass := map[int][]int{}
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	for _, c := range classOrder(y) {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(math.Round(frac * float64(len(idx))))
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	if len(test) == 0 {
		return nil, nil, fmt.Errorf("split: test fraction %g leaves no test rows", frac)
	}
	return train, test, nil
}

// Take returns the elements of vals at idx.
func Take[T any](vals []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

func classOrder(y []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, c := range y {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
