package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
	"github.com/KaramelBytes/sommelier-cli/internal/selection"
)

type wineClass struct {
	province, variety string
	words             [4]string
}

var synthetic = []wineClass{
	{"California", "Pinot Noir", [4]string{"raspberry", "strawberry", "cherry", "tart"}},
	{"Oregon", "Pinot Noir", [4]string{"cranberry", "forest", "mushroom", "spice"}},
	{"Burgundy", "Pinot Noir", [4]string{"earthy", "minerality", "chalk", "elegant"}},
	{"California", "Cabernet Sauvignon", [4]string{"cassis", "oaky", "blackcurrant", "opulent"}},
	{"Piedmont", "Nebbiolo", [4]string{"tar", "roses", "licorice", "austere"}},
	{"Tuscany", "Sangiovese", [4]string{"rustic", "leather", "herbs", "savory"}},
	{"Mendoza Province", "Malbec", [4]string{"violet", "plum", "chocolate", "plush"}},
	{"Northern Spain", "Tempranillo", [4]string{"dill", "vanilla", "tobacco", "dusty"}},
}

var generic = []string{"finish", "palate", "nose", "body", "glass"}

// writeCorpus writes a reviews CSV with perClass rows per class. Each
// description names its own province and variety, which the leakage filter
// must remove, and shares filler words with every other class.
func writeCorpus(t *testing.T, perClass int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "winemag.csv")
	f, err := os.Create(p)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.Write([]string{"", "country", "description", "points", "price", "province", "variety"}))
	id := 0
	for i := 0; i < perClass; i++ {
		for _, c := range synthetic {
			desc := fmt.Sprintf("This %s %s offers %s and %s on the %s.", c.province, c.variety, c.words[i%4], c.words[(i+1)%4], generic[i%5])
			require.NoError(t, w.Write([]string{strconv.Itoa(id), "X", desc, "90", "25", c.province, c.variety}))
			id++
		}
	}
	// a duplicate and a row without a variety, both dropped by the cleaner
	require.NoError(t, w.Write([]string{strconv.Itoa(id), "X", "This California Pinot Noir offers raspberry and strawberry on the finish.", "90", "25", "California", "Pinot Noir"}))
	require.NoError(t, w.Write([]string{strconv.Itoa(id + 1), "X", "Odd.", "80", "9", "Mosel", ""}))
	w.Flush()
	require.NoError(t, w.Error())
	require.NoError(t, f.Close())
	return p
}

func nbOptions() Options {
	return Options{
		Classes: RedClasses,
		Vectorizer: selection.VectorizerGrid{
			NGramMax:  []int{2},
			StopWords: []string{"english"},
			MaxDF:     []float64{0.16},
			MinDF:     []float64{0.001},
		},
		NB:           selection.NBGrid{Alpha: []float64{0.04}},
		SGD:          selection.SGDGrid{MaxIter: []int{20}},
		FinalModel:   "nb",
		Folds:        5,
		TestFraction: 0.2,
		Seed:         1,
		TopN:         10,
		Workers:      2,
	}
}

func prepare(t *testing.T) *Prepared {
	t.Helper()
	tb, err := dataset.Load(writeCorpus(t, 10), dataset.LoadOptions{})
	require.NoError(t, err)
	p, err := Prepare(tb, "_", RedClasses)
	require.NoError(t, err)
	return p
}

func TestPrepare(t *testing.T) {
	p := prepare(t)
	assert.Equal(t, dataset.CleanStats{Rows: 82, Duplicates: 1, Missing: 1, Kept: 80}, p.Clean)
	assert.Len(t, p.Samples, 80)
	assert.Equal(t, 8, p.Labels.Len())
	assert.Equal(t, "Burgundy_Pinot Noir", p.Labels.Label(0))
	for _, s := range p.Samples {
		for _, leak := range []string{"California", "Oregon", "Pinot", "Noir", "Mendoza", "Province", "Malbec"} {
			if strings.Contains(s.Label, leak) {
				assert.NotContains(t, strings.Fields(s.Text), leak, "label %s text %q", s.Label, s.Text)
			}
		}
	}
}

func TestTrain_CaliforniaPinotNoir(t *testing.T) {
	p := prepare(t)
	res, err := Train(context.Background(), p, nbOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 64, res.Train)
	assert.Equal(t, 16, res.Test)
	assert.Equal(t, "nb", res.Final)
	require.Len(t, res.Families, 2)

	nb := res.Family("nb")
	require.NotNil(t, nb)
	assert.Equal(t, "nb alpha=0.04", nb.Fitted.Candidate.Trainer.String())
	assert.InDelta(t, 1.0, nb.HoldoutF1, 1e-12)
	assert.InDelta(t, 1.0, nb.Search.BestCandidate().Mean, 1e-12)
	require.NotNil(t, res.Family("sgd"))
	assert.Nil(t, res.Family("svm"))

	vocab := nb.Fitted.Vectorizer.Vocabulary()
	for _, term := range vocab {
		for _, tok := range strings.Fields(term) {
			assert.NotContains(t, []string{"california", "pinot", "noir", "mendoza", "the", "and"}, tok, "term %q", term)
		}
	}
	// "offers" is in every description, far above max_df.
	_, ok := nb.Fitted.Vectorizer.Index("offers")
	assert.False(t, ok)

	labels, err := res.Predictor.Predict([]string{
		"Bright strawberry and cherry aromas and flavors. Light wine with a tart finish.",
		"Tar and roses, austere and long.",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"California_Pinot Noir", "Piedmont_Nebbiolo"}, labels)

	var cal []string
	for _, d := range res.Descriptors {
		assert.Len(t, d.Terms, 10)
		if d.Label != "California_Pinot Noir" {
			continue
		}
		for _, tm := range d.Terms {
			cal = append(cal, tm.Term)
		}
	}
	assert.Contains(t, cal, "raspberry")
	assert.Contains(t, cal, "strawberry")

	md := res.Markdown(5)
	assert.Contains(t, md, "Final model: nb")
	assert.Contains(t, md, "[DESCRIPTORS]")
	assert.Contains(t, md, res.RunID)
}

func TestTrain_Deterministic(t *testing.T) {
	p := prepare(t)
	opt := nbOptions()
	opt.Families = []string{"nb"}
	a, err := Train(context.Background(), p, opt)
	require.NoError(t, err)
	opt.Workers = 1
	b, err := Train(context.Background(), p, opt)
	require.NoError(t, err)
	assert.Equal(t, a.Descriptors, b.Descriptors)
	assert.NotEqual(t, a.RunID, b.RunID)
	require.Len(t, a.Families, 1)
}

func TestTrain_Errors(t *testing.T) {
	p := prepare(t)
	opt := nbOptions()
	opt.Families = []string{"forest"}
	_, err := Train(context.Background(), p, opt)
	assert.Error(t, err)

	tb, err := dataset.Load(writeCorpus(t, 2), dataset.LoadOptions{})
	require.NoError(t, err)
	_, err = Prepare(tb, "_", []string{"Mosel_Riesling"})
	assert.ErrorIs(t, err, dataset.ErrEmptySelection)
}

func TestResolveClasses(t *testing.T) {
	lists := DefaultClassLists()
	red, err := ResolveClasses(lists, " Red ")
	require.NoError(t, err)
	assert.Len(t, red, 14)
	assert.Contains(t, red, "California_Pinot Noir")
	white, err := ResolveClasses(lists, "white")
	require.NoError(t, err)
	assert.Len(t, white, 12)
	_, err = ResolveClasses(lists, "rose")
	assert.ErrorContains(t, err, "red, white")

	// callers get copies
	lists["red"][0] = "changed"
	assert.Equal(t, "Bordeaux_Bordeaux-style Red Blend", RedClasses[0])
}
