// Package pipeline wires the stages together: clean, label, scrub leakage,
// select classes, search and fit classifiers, report descriptors, predict.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
	"github.com/KaramelBytes/sommelier-cli/internal/model"
	"github.com/KaramelBytes/sommelier-cli/internal/report"
	"github.com/KaramelBytes/sommelier-cli/internal/selection"
)

// Options configures a training run.
type Options struct {
	Separator string
	// Classes is the curated allow-list of composite labels.
	Classes    []string
	Vectorizer selection.VectorizerGrid
	NB         selection.NBGrid
	SGD        selection.SGDGrid
	// Families to search: "nb", "sgd". Empty means both.
	Families []string
	// FinalModel picks the family used for descriptors and prediction.
	FinalModel   string
	Folds        int
	TestFraction float64
	Seed         int64
	TopN         int
	Workers      int
	Logger       *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) searches(family string) bool {
	if len(o.Families) == 0 {
		return true
	}
	for _, f := range o.Families {
		if strings.EqualFold(f, family) {
			return true
		}
	}
	return false
}

// Prepared is the modeling subset derived from a raw table.
type Prepared struct {
	Clean   dataset.CleanStats
	Reviews []dataset.Review
	Samples []dataset.Sample
	Labels  *dataset.LabelMap
}

// Prepare cleans t, builds composite labels, scrubs label tokens from the
// descriptions and keeps the allow-listed classes.
func Prepare(t *dataset.Table, sep string, classes []string) (*Prepared, error) {
	cleaned, st := dataset.Clean(t)
	reviews, err := dataset.Reviews(cleaned)
	if err != nil {
		return nil, err
	}
	dataset.BuildLabels(reviews, sep)
	dataset.FilterAll(reviews)
	samples, err := dataset.SelectClasses(reviews, classes)
	if err != nil {
		return nil, err
	}
	return &Prepared{Clean: st, Reviews: reviews, Samples: samples, Labels: dataset.NewLabelMap(samples)}, nil
}

// FamilyResult is the outcome of searching one classifier family.
type FamilyResult struct {
	Family  string
	Search  *selection.SearchResult
	Fitted  *selection.Fitted
	Holdout []selection.ClassScore
	// HoldoutF1 is zero when no holdout split was used.
	HoldoutF1 float64
}

// TrainResult is everything a training run produces.
type TrainResult struct {
	RunID       string
	Train, Test int
	Families    []FamilyResult
	Final       string
	Descriptors []report.ClassDescriptors
	Predictor   *Predictor
}

// Family returns the result for a family, or nil.
func (r *TrainResult) Family(name string) *FamilyResult {
	for i := range r.Families {
		if r.Families[i].Family == name {
			return &r.Families[i]
		}
	}
	return nil
}

// Train searches each requested family on the training split, refits the
// winner, scores it on the held-out split and reports descriptors for the
// final family.
func Train(ctx context.Context, p *Prepared, opt Options) (*TrainResult, error) {
	log := opt.logger()
	res := &TrainResult{RunID: uuid.NewString()}
	log = log.With(zap.String("run", res.RunID))

	texts, y := p.Labels.Encode(p.Samples)
	classes := p.Labels.Len()
	trainIdx := make([]int, len(y))
	for i := range trainIdx {
		trainIdx[i] = i
	}
	var testIdx []int
	if opt.TestFraction > 0 {
		var err error
		trainIdx, testIdx, err = selection.TrainTestSplit(y, opt.TestFraction, opt.Seed)
		if err != nil {
			return nil, err
		}
	}
	res.Train, res.Test = len(trainIdx), len(testIdx)
	trainTexts, trainY := selection.Take(texts, trainIdx), selection.Take(y, trainIdx)
	testTexts, testY := selection.Take(texts, testIdx), selection.Take(y, testIdx)
	log.Info("training", zap.Int("classes", classes), zap.Int("train", len(trainIdx)), zap.Int("test", len(testIdx)))

	vecs := opt.Vectorizer.Expand()
	type family struct {
		name     string
		trainers []model.Trainer
	}
	var fams []family
	if opt.searches(model.FamilyNB) {
		fams = append(fams, family{model.FamilyNB, opt.NB.Expand()})
	}
	if opt.searches(model.FamilySGD) {
		fams = append(fams, family{model.FamilySGD, opt.SGD.Expand(opt.Seed)})
	}
	if len(fams) == 0 {
		return nil, fmt.Errorf("train: no classifier family selected from %v", opt.Families)
	}

	for _, f := range fams {
		cands := selection.Candidates(vecs, f.trainers)
		log.Info("grid search", zap.String("family", f.name), zap.Int("candidates", len(cands)))
		sr, err := selection.GridSearch(ctx, trainTexts, trainY, classes, cands, selection.SearchOptions{
			Folds: opt.Folds, Workers: opt.Workers, Logger: log,
		})
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", f.name, err)
		}
		best := sr.BestCandidate()
		log.Info("best candidate", zap.String("family", f.name), zap.String("candidate", best.Candidate.String()), zap.Float64("macro_f1", best.Mean))
		fitted, err := selection.Fit(best.Candidate, trainTexts, trainY, classes)
		if err != nil {
			return nil, fmt.Errorf("refit %s: %w", f.name, err)
		}
		fr := FamilyResult{Family: f.name, Search: sr, Fitted: fitted}
		if len(testIdx) > 0 {
			pred, err := fitted.Predict(testTexts)
			if err != nil {
				return nil, err
			}
			if fr.Holdout, err = selection.PerClass(testY, pred); err != nil {
				return nil, err
			}
			fr.HoldoutF1, _ = selection.MacroF1(testY, pred)
			log.Info("holdout", zap.String("family", f.name), zap.Float64("macro_f1", fr.HoldoutF1))
		}
		res.Families = append(res.Families, fr)
	}

	final := res.Family(opt.FinalModel)
	if final == nil {
		final = &res.Families[0]
	}
	res.Final = final.Family
	ds, err := report.Descriptors(final.Fitted.Model, final.Fitted.Vectorizer.Vocabulary(), p.Labels.Labels, opt.TopN)
	if err != nil {
		return nil, err
	}
	res.Descriptors = ds
	res.Predictor = &Predictor{Fitted: final.Fitted, Labels: p.Labels}
	return res, nil
}

// Predictor maps raw text to composite labels with a fitted vectorizer and
// classifier. It never refits.
type Predictor struct {
	Fitted *selection.Fitted
	Labels *dataset.LabelMap
}

// Predict returns one composite label per text.
func (p *Predictor) Predict(texts []string) ([]string, error) {
	codes, err := p.Fitted.Predict(texts)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = p.Labels.Label(c)
	}
	return out, nil
}

// Markdown renders the run for the terminal.
func (r *TrainResult) Markdown(top int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Run: %s\nTrain rows: %d, held-out rows: %d\n\n", r.RunID, r.Train, r.Test))
	for _, f := range r.Families {
		b.WriteString(report.Search(f.Search, top))
		b.WriteString(fmt.Sprintf("Best %s: %s\n", f.Family, f.Fitted.Candidate))
		if r.Test > 0 {
			b.WriteString(fmt.Sprintf("Held-out macro F1 (%s): %.4f\n", f.Family, f.HoldoutF1))
			b.WriteString(report.Scores(f.Holdout, r.Predictor.Labels.Labels))
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Final model: %s\n", r.Final))
	b.WriteString(report.Descriptor(r.Descriptors))
	return b.String()
}
