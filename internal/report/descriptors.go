// Package report ranks per-class descriptors and renders pipeline results
// as plain text for the terminal.
package report

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/sommelier-cli/internal/model"
)

// DefaultTopN is the number of descriptors kept per class.
const DefaultTopN = 10

// Term is a vocabulary entry with its class weight.
type Term struct {
	Term   string
	Weight float64
}

// ClassDescriptors are the highest-weighted terms of one class.
type ClassDescriptors struct {
	Code  int
	Label string
	Terms []Term
}

// Descriptors ranks every vocabulary term by each class's model weight,
// highest first with ties broken by term, and keeps the top n per class.
// labels maps class code to composite label; vocab maps feature index to term.
func Descriptors(m model.Model, vocab []string, labels []string, n int) ([]ClassDescriptors, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	if m.Classes() != len(labels) {
		return nil, fmt.Errorf("descriptors: model has %d classes but %d labels", m.Classes(), len(labels))
	}
	out := make([]ClassDescriptors, 0, len(labels))
	for c := range labels {
		w := m.Weights(c)
		if len(w) != len(vocab) {
			return nil, fmt.Errorf("descriptors: class %d has %d weights for %d terms", c, len(w), len(vocab))
		}
		idx := make([]int, len(vocab))
		for j := range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool {
			wa, wb := w[idx[a]], w[idx[b]]
			if wa == wb {
				return vocab[idx[a]] < vocab[idx[b]]
			}
			return wa > wb
		})
		k := n
		if k > len(idx) {
			k = len(idx)
		}
		terms := make([]Term, k)
		for i := 0; i < k; i++ {
			terms[i] = Term{Term: vocab[idx[i]], Weight: w[idx[i]]}
		}
		out = append(out, ClassDescriptors{Code: c, Label: labels[c], Terms: terms})
	}
	return out, nil
}
