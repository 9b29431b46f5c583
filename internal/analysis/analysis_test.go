package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
)

const wineCSV = `,country,description,points,price,province,variety
0,US,Ripe cherry.,90,20,California,Pinot Noir
1,US,Bright lemon.,85,10,Oregon,Pinot Gris
2,France,Earthy.,95,,Burgundy,Pinot Noir
3,US,Ripe cherry.,90,20,California,Pinot Noir
4,France,Crisp.,88,40,Burgundy,Chardonnay
`

func TestProfile(t *testing.T) {
	tb, err := dataset.Read(strings.NewReader(wineCSV), "wine.csv", dataset.LoadOptions{})
	require.NoError(t, err)
	rep := Profile(tb, 2)
	assert.Equal(t, 5, rep.Rows)
	assert.Equal(t, 1, rep.Duplicates)
	assert.Len(t, rep.Cols, 6)

	pts, ok := rep.Column("Points")
	require.True(t, ok)
	assert.Equal(t, "numeric", pts.Kind)
	assert.Equal(t, 85.0, pts.Min)
	assert.Equal(t, 95.0, pts.Max)
	assert.InDelta(t, 89.6, pts.Mean, 1e-9)

	price, _ := rep.Column("price")
	assert.Equal(t, 1, price.Missing)
	assert.Equal(t, 4, price.NonNull)

	country, _ := rep.Column("country")
	assert.Equal(t, "categorical", country.Kind)
	assert.Equal(t, []CategoryCount{{"US", 3}, {"France", 2}}, country.TopValues)

	desc, _ := rep.Column("description")
	assert.Equal(t, "text", desc.Kind)
	assert.Empty(t, desc.TopValues)

	md := rep.Markdown()
	assert.Contains(t, md, "[DATASET SUMMARY]")
	assert.Contains(t, md, "Duplicate rows: 1")
	assert.Contains(t, md, "- country: categorical")

	_, ok = rep.Column("nope")
	assert.False(t, ok)
}

func reviews(t *testing.T) []dataset.Review {
	t.Helper()
	tb, err := dataset.Read(strings.NewReader(wineCSV), "wine.csv", dataset.LoadOptions{})
	require.NoError(t, err)
	rs, err := dataset.Reviews(tb)
	require.NoError(t, err)
	return rs
}

func TestValue_ByCountry(t *testing.T) {
	rep, err := Value(reviews(t), ValueOptions{GroupBy: "country", MinCount: 1, Top: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Rows)
	assert.Equal(t, 4, rep.Priced)
	require.Len(t, rep.Groups, 2)

	// France: points (95+88)/2, one priced row at 40
	fr := rep.Groups[0]
	assert.Equal(t, "France", fr.Key)
	assert.Equal(t, 2, fr.Count)
	assert.Equal(t, 1, fr.Priced)
	assert.InDelta(t, 91.5, fr.MeanPoints, 1e-9)
	assert.InDelta(t, 40, fr.MeanPrice, 1e-9)
	assert.InDelta(t, 88.0/40, fr.MeanValue, 1e-9)

	us := rep.Groups[1]
	assert.InDelta(t, (90+85+90)/3.0, us.MeanPoints, 1e-9)
	assert.InDelta(t, 50.0/3, us.MeanPrice, 1e-9)

	require.Len(t, rep.BestValue, 2)
	assert.InDelta(t, 8.5, rep.BestValue[0].Value, 1e-9)
	assert.Equal(t, 1, rep.BestValue[0].ID)

	// Bands: $10 and $20 x2 fall in 0-15 and 15-30, $40 in 30-50.
	assert.Equal(t, 1, rep.Bands[0].Count)
	assert.Equal(t, 2, rep.Bands[1].Count)
	assert.Equal(t, 1, rep.Bands[2].Count)
	assert.Zero(t, rep.Bands[4].High)

	md := rep.Markdown(10)
	assert.Contains(t, md, "[BY COUNTRY]")
	assert.Contains(t, md, "$100+")
}

func TestValue_Correlation(t *testing.T) {
	var rs []dataset.Review
	for i := 1; i <= 5; i++ {
		rs = append(rs, dataset.Review{Country: "US", Points: 80 + float64(2*i), HasPoints: true, Price: float64(10 * i), HasPrice: true})
	}
	rep, err := Value(rs, ValueOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rep.Corr, 1e-9)
	require.Len(t, rep.Groups, 1)
	assert.Equal(t, 5, rep.Groups[0].Priced)
}

func TestValue_UnscoredRowsLeftOutOfPoints(t *testing.T) {
	const csv = `,country,description,points,price,province,variety
0,Chile,Cassis.,90,20,Maipo Valley,Cabernet Sauvignon
1,Chile,Herbal.,,10,Maipo Valley,Carmenère
2,Chile,Plush.,n/a,5,Colchagua Valley,Carmenère
3,Chile,Firm.,86,,Maipo Valley,Cabernet Sauvignon
`
	tb, err := dataset.Read(strings.NewReader(csv), "chile.csv", dataset.LoadOptions{})
	require.NoError(t, err)
	rs, err := dataset.Reviews(tb)
	require.NoError(t, err)
	assert.False(t, rs[1].HasPoints)
	assert.False(t, rs[2].HasPoints)

	rep, err := Value(rs, ValueOptions{MinCount: 1})
	require.NoError(t, err)
	require.Len(t, rep.Groups, 1)
	g := rep.Groups[0]
	assert.Equal(t, 4, g.Count)
	assert.Equal(t, 3, g.Priced)
	assert.InDelta(t, 88, g.MeanPoints, 1e-9)
	assert.InDelta(t, 35.0/3, g.MeanPrice, 1e-9)
	assert.InDelta(t, 90.0/20, g.MeanValue, 1e-9)
	require.Len(t, rep.BestValue, 1)
	assert.Equal(t, 0, rep.BestValue[0].ID)
	assert.Equal(t, 1, rep.Bands[1].Count)
	assert.Zero(t, rep.Bands[0].Count)
	assert.Zero(t, rep.Corr)
}

func TestValue_MinCountAndGroupBy(t *testing.T) {
	rep, err := Value(reviews(t), ValueOptions{GroupBy: "variety", MinCount: 2})
	require.NoError(t, err)
	require.Len(t, rep.Groups, 1)
	assert.Equal(t, "Pinot Noir", rep.Groups[0].Key)
	assert.False(t, math.IsNaN(rep.Groups[0].MeanValue))

	_, err = Value(nil, ValueOptions{GroupBy: "title"})
	assert.Error(t, err)
}
