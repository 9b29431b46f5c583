package dataset

import (
	"sort"
	"strings"
)

// DefaultSeparator joins province and variety into a composite label.
const DefaultSeparator = "_"

// CompositeLabel joins province and variety with sep.
func CompositeLabel(province, variety, sep string) string {
	return province + sep + variety
}

// BuildLabels sets the composite label on every review in place.
// An empty sep means DefaultSeparator.
func BuildLabels(reviews []Review, sep string) {
	if sep == "" {
		sep = DefaultSeparator
	}
	for i := range reviews {
		reviews[i].Label = CompositeLabel(reviews[i].Province, reviews[i].Variety, sep)
	}
}

// LabelCount is the number of reviews carrying a composite label.
type LabelCount struct {
	Label string
	Count int
}

// TallyLabels counts reviews per composite label, most frequent first,
// ties broken by label.
func TallyLabels(reviews []Review) []LabelCount {
	counts := map[string]int{}
	for _, r := range reviews {
		counts[r.Label]++
	}
	out := make([]LabelCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, LabelCount{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Label < out[j].Label
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// NormalizePunctuation turns commas, periods and hyphens into spaces and
// collapses whitespace runs into single spaces.
func NormalizePunctuation(s string) string {
	s = strings.NewReplacer(",", " ", ".", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// StripTokens removes from text every whitespace token that also occurs in
// field. Both are punctuation-normalized first; matching is exact and
// case-sensitive.
func StripTokens(text, field string) string {
	drop := map[string]struct{}{}
	for _, tok := range strings.Fields(NormalizePunctuation(field)) {
		drop[tok] = struct{}{}
	}
	toks := strings.Fields(NormalizePunctuation(text))
	kept := toks[:0]
	for _, tok := range toks {
		if _, ok := drop[tok]; !ok {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// FilterLeakage scrubs a review's own variety tokens and then its own
// province tokens from its description. The province pass runs on the
// output of the variety pass.
func FilterLeakage(r Review) string {
	desc := StripTokens(r.Description, r.Variety)
	return StripTokens(desc, r.Province)
}

// FilterAll applies FilterLeakage to every review in place.
func FilterAll(reviews []Review) {
	for i := range reviews {
		reviews[i].Description = FilterLeakage(reviews[i])
	}
}
