package model

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/sommelier-cli/internal/vectorize"
)

// minAlpha keeps zero smoothing from producing log(0).
const minAlpha = 1e-10

// MultinomialNB is the multinomial naive Bayes family with additive
// (Lidstone) smoothing Alpha.
type MultinomialNB struct {
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
}

func (MultinomialNB) Family() string { return FamilyNB }

func (nb MultinomialNB) String() string { return fmt.Sprintf("nb alpha=%g", nb.Alpha) }

// NBModel is a fitted multinomial naive Bayes classifier.
type NBModel struct {
	ClassLogPrior  []float64
	FeatureLogProb [][]float64
}

// Fit estimates class priors and smoothed class-conditional feature
// log-probabilities. Classes absent from y get a -Inf prior.
func (nb MultinomialNB) Fit(x vectorize.Matrix, y []int, classes int) (Model, error) {
	if err := checkFitInput(x, y, classes); err != nil {
		return nil, err
	}
	if nb.Alpha < 0 {
		return nil, fmt.Errorf("nb: alpha must be >= 0, got %g", nb.Alpha)
	}
	alpha := math.Max(nb.Alpha, minAlpha)
	counts := make([][]float64, classes)
	for c := range counts {
		counts[c] = make([]float64, x.Cols)
	}
	classCount := make([]float64, classes)
	for i, row := range x.Rows {
		c := y[i]
		classCount[c]++
		for k, j := range row.Indices {
			counts[c][j] += row.Values[k]
		}
	}

	m := &NBModel{
		ClassLogPrior:  make([]float64, classes),
		FeatureLogProb: make([][]float64, classes),
	}
	total := float64(len(y))
	for c := 0; c < classes; c++ {
		m.ClassLogPrior[c] = math.Log(classCount[c]) - math.Log(total)
		var sum float64
		for _, v := range counts[c] {
			sum += v + alpha
		}
		lp := make([]float64, x.Cols)
		logSum := math.Log(sum)
		for j, v := range counts[c] {
			lp[j] = math.Log(v+alpha) - logSum
		}
		m.FeatureLogProb[c] = lp
	}
	return m, nil
}

// Predict returns the maximum a posteriori class per row.
func (m *NBModel) Predict(x vectorize.Matrix) []int {
	out := make([]int, len(x.Rows))
	scores := make([]float64, len(m.ClassLogPrior))
	for i, row := range x.Rows {
		for c := range scores {
			scores[c] = m.ClassLogPrior[c] + row.Dot(m.FeatureLogProb[c])
		}
		out[i] = argmax(scores)
	}
	return out
}

func (m *NBModel) Weights(c int) []float64 { return m.FeatureLogProb[c] }

func (m *NBModel) Classes() int { return len(m.ClassLogPrior) }
