// Package vectorize converts text into TF-IDF weighted sparse vectors.
package vectorize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/sommelier-cli/internal/text"
)

var (
	// ErrNotFitted is returned by Transform before Fit.
	ErrNotFitted = errors.New("vectorizer is not fitted")
	// ErrEmptyVocabulary is returned when document-frequency pruning leaves no terms.
	ErrEmptyVocabulary = errors.New("no terms remain after document-frequency pruning")
	// ErrDFRange is returned when max_df resolves to fewer documents than min_df.
	ErrDFRange = errors.New("max_df corresponds to fewer documents than min_df")
	// ErrNoDocuments is returned by Fit with an empty corpus.
	ErrNoDocuments = errors.New("no documents to fit")
)

// Options configures the vectorizer.
type Options struct {
	NGramMin int `mapstructure:"ngram_min" yaml:"ngram_min"`
	NGramMax int `mapstructure:"ngram_max" yaml:"ngram_max"`
	// StopWords is "english" or "" for none.
	StopWords string `mapstructure:"stop_words" yaml:"stop_words"`
	// MaxDF <= 1 is a fraction of documents, > 1 an absolute count.
	MaxDF float64 `mapstructure:"max_df" yaml:"max_df"`
	// MinDF < 1 is a fraction of documents, >= 1 an absolute count.
	MinDF float64 `mapstructure:"min_df" yaml:"min_df"`
	// KeepCase disables lowercasing.
	KeepCase bool `mapstructure:"keep_case" yaml:"keep_case,omitempty"`
}

// DefaultOptions returns unigram+bigram settings with no pruning.
func DefaultOptions() Options {
	return Options{NGramMin: 1, NGramMax: 2, MaxDF: 1.0, MinDF: 1}
}

func (o Options) String() string {
	sw := o.StopWords
	if sw == "" {
		sw = "none"
	}
	return fmt.Sprintf("ngram=(%d,%d) stop_words=%s max_df=%g min_df=%g", o.NGramMin, o.NGramMax, sw, o.MaxDF, o.MinDF)
}

// TFIDF is a term-frequency / inverse-document-frequency vectorizer.
// After Fit the vocabulary and idf weights are fixed; Transform reuses them
// verbatim and is safe for concurrent use.
type TFIDF struct {
	opt      Options
	analyzer text.Analyzer
	vocab    map[string]int
	terms    []string
	idf      []float64
}

// New returns an unfitted vectorizer.
func New(opt Options) (*TFIDF, error) {
	if opt.NGramMin <= 0 {
		opt.NGramMin = 1
	}
	if opt.NGramMax < opt.NGramMin {
		opt.NGramMax = opt.NGramMin
	}
	if opt.MaxDF <= 0 {
		opt.MaxDF = 1.0
	}
	if opt.MinDF <= 0 {
		opt.MinDF = 1
	}
	sw, ok := text.StopWords(opt.StopWords)
	if !ok {
		return nil, fmt.Errorf("unknown stop_words %q (use english or none)", opt.StopWords)
	}
	return &TFIDF{
		opt: opt,
		analyzer: text.Analyzer{
			NGramMin:  opt.NGramMin,
			NGramMax:  opt.NGramMax,
			Lowercase: !opt.KeepCase,
			StopWords: sw,
		},
	}, nil
}

// Options returns the effective options.
func (v *TFIDF) Options() Options { return v.opt }

// Fit builds the vocabulary and idf weights from docs.
func (v *TFIDF) Fit(docs []string) error {
	n := len(docs)
	if n == 0 {
		return ErrNoDocuments
	}
	df := map[string]int{}
	for _, d := range docs {
		seen := map[string]struct{}{}
		for _, t := range v.analyzer.Analyze(d) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	maxCount := v.opt.MaxDF
	if maxCount <= 1 {
		maxCount *= float64(n)
	}
	minCount := v.opt.MinDF
	if minCount < 1 {
		minCount *= float64(n)
	}
	if maxCount < minCount {
		return ErrDFRange
	}

	terms := make([]string, 0, len(df))
	for t, c := range df {
		fc := float64(c)
		if fc <= maxCount && fc >= minCount {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return ErrEmptyVocabulary
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		vocab[t] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}
	v.vocab, v.terms, v.idf = vocab, terms, idf
	return nil
}

// Transform maps docs into L2-normalized TF-IDF rows.
func (v *TFIDF) Transform(docs []string) (Matrix, error) {
	if v.vocab == nil {
		return Matrix{}, ErrNotFitted
	}
	m := Matrix{Rows: make([]SparseVector, len(docs)), Cols: len(v.terms)}
	for i, d := range docs {
		m.Rows[i] = v.row(d)
	}
	return m, nil
}

// FitTransform fits on docs and returns their vectors.
func (v *TFIDF) FitTransform(docs []string) (Matrix, error) {
	if err := v.Fit(docs); err != nil {
		return Matrix{}, err
	}
	return v.Transform(docs)
}

func (v *TFIDF) row(doc string) SparseVector {
	tf := map[int]float64{}
	for _, t := range v.analyzer.Analyze(doc) {
		if j, ok := v.vocab[t]; ok {
			tf[j]++
		}
	}
	idx := make([]int, 0, len(tf))
	for j := range tf {
		idx = append(idx, j)
	}
	sort.Ints(idx)
	vals := make([]float64, len(idx))
	var norm float64
	for k, j := range idx {
		x := tf[j] * v.idf[j]
		vals[k] = x
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range vals {
			vals[k] /= norm
		}
	}
	return SparseVector{Indices: idx, Values: vals}
}

// Vocabulary returns the fitted terms ordered by feature index.
func (v *TFIDF) Vocabulary() []string { return v.terms }

// IDF returns the idf weight per feature index.
func (v *TFIDF) IDF() []float64 { return v.idf }

// Index returns the feature index of term.
func (v *TFIDF) Index(term string) (int, bool) {
	j, ok := v.vocab[term]
	return j, ok
}
