// Package model holds the classifier families fitted over TF-IDF features:
// a multinomial naive Bayes baseline and a linear model trained by
// stochastic gradient descent.
package model

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/sommelier-cli/internal/vectorize"
)

var (
	// ErrEmptyTrainingSet is returned by Fit with no rows.
	ErrEmptyTrainingSet = errors.New("empty training set")
	// ErrTooFewClasses is returned when a family needs more classes than given.
	ErrTooFewClasses = errors.New("need at least two classes")
)

// Trainer fits a Model. Trainers are parameter sets; fitting never mutates
// them, and refitting yields a new Model.
type Trainer interface {
	Fit(x vectorize.Matrix, y []int, classes int) (Model, error)
	Family() string
	String() string
}

// Model is a fitted, immutable classifier.
type Model interface {
	// Predict returns one class code per row.
	Predict(x vectorize.Matrix) []int
	// Weights returns the per-feature weight of class c: log-probabilities
	// for naive Bayes, coefficients for linear models.
	Weights(c int) []float64
	Classes() int
}

// Family names.
const (
	FamilyNB  = "nb"
	FamilySGD = "sgd"
)

func checkFitInput(x vectorize.Matrix, y []int, classes int) error {
	if len(x.Rows) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(x.Rows) != len(y) {
		return fmt.Errorf("fit: %d rows but %d labels", len(x.Rows), len(y))
	}
	for i, c := range y {
		if c < 0 || c >= classes {
			return fmt.Errorf("fit: label %d at row %d out of range [0,%d)", c, i, classes)
		}
	}
	return nil
}

// argmax returns the index of the largest score; ties go to the lowest index.
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
