package selection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/sommelier-cli/internal/model"
	"github.com/KaramelBytes/sommelier-cli/internal/vectorize"
)

// VectorizerGrid lists the vectorizer values to search.
type VectorizerGrid struct {
	NGramMax  []int     `mapstructure:"ngram_max" yaml:"ngram_max"`
	StopWords []string  `mapstructure:"stop_words" yaml:"stop_words"`
	MaxDF     []float64 `mapstructure:"max_df" yaml:"max_df"`
	MinDF     []float64 `mapstructure:"min_df" yaml:"min_df"`
}

// NBGrid lists naive Bayes smoothing values to search.
type NBGrid struct {
	Alpha []float64 `mapstructure:"alpha" yaml:"alpha"`
}

// SGDGrid lists SGD values to search.
type SGDGrid struct {
	Loss    []string  `mapstructure:"loss" yaml:"loss"`
	Penalty []string  `mapstructure:"penalty" yaml:"penalty"`
	Alpha   []float64 `mapstructure:"alpha" yaml:"alpha"`
	MaxIter []int     `mapstructure:"max_iter" yaml:"max_iter"`
	Tol     []float64 `mapstructure:"tol" yaml:"tol"`
}

// Expand returns every vectorizer option combination in a fixed order.
// Empty value lists fall back to vectorize.DefaultOptions.
func (g VectorizerGrid) Expand() []vectorize.Options {
	def := vectorize.DefaultOptions()
	ngrams := orDefault(g.NGramMax, def.NGramMax)
	stops := orDefault(g.StopWords, def.StopWords)
	maxDFs := orDefault(g.MaxDF, def.MaxDF)
	minDFs := orDefault(g.MinDF, def.MinDF)
	var out []vectorize.Options
	for _, ng := range ngrams {
		for _, sw := range stops {
			for _, mx := range maxDFs {
				for _, mn := range minDFs {
					out = append(out, vectorize.Options{NGramMin: 1, NGramMax: ng, StopWords: normStop(sw), MaxDF: mx, MinDF: mn})
				}
			}
		}
	}
	return out
}

// Expand returns one trainer per smoothing value.
func (g NBGrid) Expand() []model.Trainer {
	var out []model.Trainer
	for _, a := range orDefault(g.Alpha, 1.0) {
		out = append(out, model.MultinomialNB{Alpha: a})
	}
	return out
}

// Expand returns every SGD combination, all sharing seed.
func (g SGDGrid) Expand(seed int64) []model.Trainer {
	def := model.DefaultSGD()
	var out []model.Trainer
	for _, loss := range orDefault(g.Loss, def.Loss) {
		for _, pen := range orDefault(g.Penalty, def.Penalty) {
			for _, a := range orDefault(g.Alpha, def.Alpha) {
				for _, it := range orDefault(g.MaxIter, def.MaxIter) {
					for _, tol := range orDefault(g.Tol, def.Tol) {
						out = append(out, model.SGD{Loss: loss, Penalty: pen, Alpha: a, L1Ratio: def.L1Ratio, MaxIter: it, Tol: tol, Seed: seed})
					}
				}
			}
		}
	}
	return out
}

func orDefault[T any](vals []T, def T) []T {
	if len(vals) == 0 {
		return []T{def}
	}
	return vals
}

func normStop(s string) string {
	if strings.EqualFold(s, "none") {
		return ""
	}
	return strings.ToLower(s)
}

// Candidate is one vectorizer+classifier configuration.
type Candidate struct {
	Vectorizer vectorize.Options
	Trainer    model.Trainer
}

func (c Candidate) String() string { return c.Trainer.String() + " | " + c.Vectorizer.String() }

// Candidates is the cross product of vectorizer options and trainers,
// vectorizer-major.
func Candidates(vecs []vectorize.Options, trainers []model.Trainer) []Candidate {
	out := make([]Candidate, 0, len(vecs)*len(trainers))
	for _, v := range vecs {
		for _, t := range trainers {
			out = append(out, Candidate{Vectorizer: v, Trainer: t})
		}
	}
	return out
}

// CandidateResult is the cross-validated score of one candidate.
type CandidateResult struct {
	Candidate  Candidate
	FoldScores []float64
	Mean       float64
	Std        float64
	// Err is set when any fold failed; Mean is then NaN.
	Err error
}

// SearchResult holds every candidate's score and the winner.
type SearchResult struct {
	Results []CandidateResult
	Best    int
	Folds   int
}

// BestCandidate returns the winning result.
func (r *SearchResult) BestCandidate() CandidateResult { return r.Results[r.Best] }

// GridError is returned when no candidate could be scored.
type GridError struct {
	Candidates int
	Err        error
}

func (e *GridError) Error() string {
	return fmt.Sprintf("grid search: all %d candidates failed: %v", e.Candidates, e.Err)
}

func (e *GridError) Unwrap() error { return e.Err }

// SearchOptions controls GridSearch.
type SearchOptions struct {
	Folds int
	// Workers bounds parallel fold evaluation; 0 means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// GridSearch scores every candidate by stratified k-fold macro F1 and picks
// the highest mean, earlier candidates winning ties. The vectorizer is
// fitted on each training fold only. Folds run in parallel; results do not
// depend on scheduling.
func GridSearch(ctx context.Context, texts []string, y []int, classes int, cands []Candidate, opt SearchOptions) (*SearchResult, error) {
	if len(cands) == 0 {
		return nil, errors.New("grid search: no candidates")
	}
	if len(texts) != len(y) {
		return nil, fmt.Errorf("grid search: %d texts but %d labels", len(texts), len(y))
	}
	if len(texts) == 0 {
		return nil, model.ErrEmptyTrainingSet
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Folds == 0 {
		opt.Folds = 5
	}
	folds, err := StratifiedKFold(y, opt.Folds)
	if err != nil {
		return nil, err
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Group candidates by vectorizer so each (vectorizer, fold) is fitted once.
	type group struct {
		vec   vectorize.Options
		cands []int
	}
	var groups []group
	byKey := map[string]int{}
	for i, c := range cands {
		key := c.Vectorizer.String()
		g, ok := byKey[key]
		if !ok {
			g = len(groups)
			byKey[key] = g
			groups = append(groups, group{vec: c.Vectorizer})
		}
		groups[g].cands = append(groups[g].cands, i)
	}

	scores := make([][]float64, len(cands))
	errs := make([]error, len(cands))
	for i := range scores {
		scores[i] = make([]float64, len(folds))
	}
	var mu sync.Mutex
	setErr := func(i int, err error) {
		mu.Lock()
		if errs[i] == nil {
			errs[i] = err
		}
		mu.Unlock()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, g := range groups {
		for f, fold := range folds {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				vec, err := vectorize.New(g.vec)
				if err == nil {
					err = vec.Fit(Take(texts, fold.Train))
				}
				if err != nil {
					for _, ci := range g.cands {
						setErr(ci, fmt.Errorf("fold %d: %w", f, err))
					}
					return nil
				}
				xTrain, _ := vec.Transform(Take(texts, fold.Train))
				xTest, _ := vec.Transform(Take(texts, fold.Test))
				yTrain, yTest := Take(y, fold.Train), Take(y, fold.Test)
				for _, ci := range g.cands {
					m, err := cands[ci].Trainer.Fit(xTrain, yTrain, classes)
					if err != nil {
						setErr(ci, fmt.Errorf("fold %d: %w", f, err))
						continue
					}
					s, err := MacroF1(yTest, m.Predict(xTest))
					if err != nil {
						setErr(ci, fmt.Errorf("fold %d: %w", f, err))
						continue
					}
					// distinct (candidate, fold) cells; no lock needed
					scores[ci][f] = s
				}
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &SearchResult{Results: make([]CandidateResult, len(cands)), Best: -1, Folds: len(folds)}
	var lastErr error
	for i, c := range cands {
		cr := CandidateResult{Candidate: c, FoldScores: scores[i], Err: errs[i]}
		if cr.Err != nil {
			cr.Mean, cr.Std = math.NaN(), math.NaN()
			lastErr = cr.Err
			log.Warn("candidate failed", zap.String("candidate", c.String()), zap.Error(cr.Err))
		} else {
			cr.Mean, cr.Std = meanStd(cr.FoldScores)
			log.Debug("candidate scored", zap.String("candidate", c.String()), zap.Float64("macro_f1", cr.Mean))
			if res.Best < 0 || cr.Mean > res.Results[res.Best].Mean {
				res.Best = i
			}
		}
		res.Results[i] = cr
	}
	if res.Best < 0 {
		return nil, &GridError{Candidates: len(cands), Err: lastErr}
	}
	return res, nil
}

// Fitted pairs a fitted vectorizer with a model trained on its output.
type Fitted struct {
	Vectorizer *vectorize.TFIDF
	Model      model.Model
	Candidate  Candidate
}

// Fit fits candidate c on all of texts.
func Fit(c Candidate, texts []string, y []int, classes int) (*Fitted, error) {
	vec, err := vectorize.New(c.Vectorizer)
	if err != nil {
		return nil, err
	}
	x, err := vec.FitTransform(texts)
	if err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}
	m, err := c.Trainer.Fit(x, y, classes)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", c.Trainer.Family(), err)
	}
	return &Fitted{Vectorizer: vec, Model: m, Candidate: c}, nil
}

// Predict vectorizes texts with the fitted vocabulary and classifies them.
func (f *Fitted) Predict(texts []string) ([]int, error) {
	x, err := f.Vectorizer.Transform(texts)
	if err != nil {
		return nil, err
	}
	return f.Model.Predict(x), nil
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}
