package dataset

import (
	"fmt"
	"sort"
)

// Sample is a review projected for modeling: id, leakage-filtered text and
// composite label.
type Sample struct {
	ID    int
	Text  string
	Label string
}

// SelectClasses keeps the reviews whose label is in allow and projects them
// to samples, preserving input order. Labels must already be built.
func SelectClasses(reviews []Review, allow []string) ([]Sample, error) {
	set := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		set[a] = struct{}{}
	}
	var out []Sample
	for _, r := range reviews {
		if _, ok := set[r.Label]; !ok {
			continue
		}
		out = append(out, Sample{ID: r.ID, Text: r.Description, Label: r.Label})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("select %d classes: %w", len(allow), ErrEmptySelection)
	}
	return out, nil
}

// LabelMap is the dense code assignment for a set of composite labels.
// Codes follow the lexicographic order of the labels.
type LabelMap struct {
	Labels []string
	codes  map[string]int
}

// NewLabelMap assigns codes to the distinct labels of samples.
func NewLabelMap(samples []Sample) *LabelMap {
	seen := map[string]struct{}{}
	var labels []string
	for _, s := range samples {
		if _, ok := seen[s.Label]; ok {
			continue
		}
		seen[s.Label] = struct{}{}
		labels = append(labels, s.Label)
	}
	sort.Strings(labels)
	m := &LabelMap{Labels: labels, codes: make(map[string]int, len(labels))}
	for i, l := range labels {
		m.codes[l] = i
	}
	return m
}

// Code returns the code for label and whether it is known.
func (m *LabelMap) Code(label string) (int, bool) {
	c, ok := m.codes[label]
	return c, ok
}

// Label returns the composite label for code, or "" when out of range.
func (m *LabelMap) Label(code int) string {
	if code < 0 || code >= len(m.Labels) {
		return ""
	}
	return m.Labels[code]
}

// Len returns the number of classes.
func (m *LabelMap) Len() int { return len(m.Labels) }

// Encode returns texts and label codes for samples.
func (m *LabelMap) Encode(samples []Sample) ([]string, []int) {
	texts := make([]string, len(samples))
	codes := make([]int, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
		codes[i] = m.codes[s.Label]
	}
	return texts, codes
}
