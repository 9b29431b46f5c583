package dataset_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
)

const dirtyCSV = `,description,province,variety,points
0,Black cherry and spice.,Tuscany,Sangiovese,90
1,Black cherry and spice.,Tuscany,Sangiovese,90
2,Lean and citrusy.,,Riesling,88
3,Lean and citrusy.,Mosel,NaN,88
4,Plush plum.,Mendoza Province,Malbec,89
5,Plush plum.,Mendoza Province,Malbec,91
6,Black cherry and spice.,Tuscany,Sangiovese,90
`

func TestClean(t *testing.T) {
	tb, err := dataset.Read(strings.NewReader(dirtyCSV), "dirty.csv", dataset.LoadOptions{})
	require.NoError(t, err)

	out, st := dataset.Clean(tb)
	assert.Equal(t, dataset.CleanStats{Rows: 7, Duplicates: 2, Missing: 2, Kept: 3}, st)

	var ids []string
	for _, row := range out.Rows {
		ids = append(ids, row[0])
	}
	// First occurrence wins; rows differing only in points are distinct.
	if diff := cmp.Diff([]string{"0", "4", "5"}, ids); diff != "" {
		t.Fatalf("kept ids (-want +got):\n%s", diff)
	}
	assert.Equal(t, 7, tb.Len(), "input table must not be modified")
	assert.Equal(t, 2, dataset.DuplicateCount(tb))
	assert.Equal(t, 0, dataset.DuplicateCount(out))

	for _, row := range out.Rows {
		assert.False(t, dataset.IsMissing(row[out.Index("province")]))
		assert.False(t, dataset.IsMissing(row[out.Index("variety")]))
	}
}

func TestClean_Idempotent(t *testing.T) {
	tb, err := dataset.Read(strings.NewReader(dirtyCSV), "dirty.csv", dataset.LoadOptions{})
	require.NoError(t, err)
	once, _ := dataset.Clean(tb)
	twice, st := dataset.Clean(once)
	assert.Equal(t, once.Rows, twice.Rows)
	assert.Zero(t, st.Duplicates+st.Missing)
}

func TestClean_CustomRequired(t *testing.T) {
	tb, err := dataset.Read(strings.NewReader(dirtyCSV), "dirty.csv", dataset.LoadOptions{})
	require.NoError(t, err)
	_, st := dataset.Clean(tb, "description", "not_a_column")
	assert.Equal(t, 0, st.Missing)
	assert.Equal(t, 5, st.Kept)
}
