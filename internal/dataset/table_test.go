package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
)

const sampleCSV = `,country,description,points,price,province,title,variety
0,Italy,"Aromas include tropical fruit, broom.",87,,Sicily & Sardinia,Nicosia 2013,White Blend
1,Portugal,"This is ripe and fruity, a wine that is smooth.",87,$15,Douro,Quinta dos Avidagos 2011,Portuguese Red
2,US,"Tart and snappy, the flavors of lime flesh.",87,14,Oregon,Rainstorm 2013 Pinot Gris,Pinot Gris
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_IndexColumnBecomesID(t *testing.T) {
	tb, err := dataset.Load(writeFile(t, "wine.csv", sampleCSV), dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.Columns[0] != dataset.IDColumn {
		t.Fatalf("first column = %q, want id", tb.Columns[0])
	}
	if tb.Len() != 3 {
		t.Fatalf("rows = %d, want 3", tb.Len())
	}
	if got := tb.Value(1, "Province"); got != "Douro" {
		t.Fatalf("case-insensitive lookup: got %q", got)
	}
	if got := tb.Value(0, "description"); got != "Aromas include tropical fruit, broom." {
		t.Fatalf("quoted field: got %q", got)
	}
	if tb.Value(0, "nope") != "" || tb.Index("nope") != -1 {
		t.Fatalf("unknown column should be empty")
	}
}

func TestRead_NoIndexUsesOrdinal(t *testing.T) {
	tb, err := dataset.Read(strings.NewReader("province\tvariety\nMosel\tRiesling\nAlsace\tRiesling\n"), "x.tsv", dataset.LoadOptions{Delimiter: '\t'})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tb.Columns) != 3 || tb.Rows[1][0] != "1" {
		t.Fatalf("expected ordinal ids, got %v %v", tb.Columns, tb.Rows)
	}
}

func TestLoad_TSVSniffAndMaxRows(t *testing.T) {
	p := writeFile(t, "wine.tsv", "id\tprovince\tvariety\n7\tMosel\tRiesling\n8\tAlsace\tRiesling\n")
	tb, err := dataset.Load(p, dataset.LoadOptions{MaxRows: 1})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.Len() != 1 || tb.Rows[0][0] != "7" || tb.Value(0, "variety") != "Riesling" {
		t.Fatalf("unexpected table: %+v", tb)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := dataset.Load(filepath.Join(t.TempDir(), "missing.csv"), dataset.LoadOptions{}); err == nil || !strings.Contains(err.Error(), "open data") {
		t.Fatalf("expected open error, got %v", err)
	}
	if _, err := dataset.Read(strings.NewReader(""), "empty.csv", dataset.LoadOptions{}); err == nil {
		t.Fatalf("expected header error for empty input")
	}
}

func TestReviews(t *testing.T) {
	tb, err := dataset.Read(strings.NewReader(sampleCSV), "wine.csv", dataset.LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	rs, err := dataset.Reviews(tb)
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	if len(rs) != 3 {
		t.Fatalf("got %d reviews", len(rs))
	}
	if rs[0].HasPrice || rs[1].Price != 15 || !rs[1].HasPrice || rs[2].Points != 87 || !rs[2].HasPoints {
		t.Fatalf("price/points parse: %+v", rs)
	}
	if rs[2].ID != 2 || rs[2].Country != "US" || rs[2].Title != "Rainstorm 2013 Pinot Gris" {
		t.Fatalf("fields: %+v", rs[2])
	}

	noVariety, _ := dataset.Read(strings.NewReader("description,province\nx,y\n"), "bad.csv", dataset.LoadOptions{})
	_, err = dataset.Reviews(noVariety)
	var mc *dataset.MissingColumnError
	if !errors.As(err, &mc) || mc.Column != dataset.ColVariety {
		t.Fatalf("expected MissingColumnError for variety, got %v", err)
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NaN", "nan", "NULL", "null"} {
		if !dataset.IsMissing(v) {
			t.Errorf("%q should be missing", v)
		}
	}
	for _, v := range []string{"0", "Napa", "none"} {
		if dataset.IsMissing(v) {
			t.Errorf("%q should not be missing", v)
		}
	}
}

func TestLoad_BOMHeader(t *testing.T) {
	p := writeFile(t, "bom.csv", "\uFEFF,province,variety\n0,Mosel,Riesling\n")
	tb, err := dataset.Load(p, dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.Columns[0] != dataset.IDColumn || tb.Value(0, "province") != "Mosel" {
		t.Fatalf("BOM not stripped: columns %q", tb.Columns)
	}
}

func TestLoad_HeaderSniff(t *testing.T) {
	cases := []struct {
		name, content string
	}{
		{"tabs.txt", "id\tprovince\tvariety\n7\tMosel\tRiesling\n"},
		{"semi.csv", "id;province;\"variety, grape\"\n7;Mosel;Riesling\n"},
		{"comma.csv", "id,province,variety\n7,Mosel,Riesling\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tb, err := dataset.Load(writeFile(t, tc.name, tc.content), dataset.LoadOptions{})
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(tb.Columns) != 3 || tb.Rows[0][0] != "7" || tb.Rows[0][2] != "Riesling" {
				t.Fatalf("unexpected table: %q %q", tb.Columns, tb.Rows)
			}
		})
	}

	// an explicit delimiter wins over sniffing
	tb, err := dataset.Load(writeFile(t, "semi.csv", "id;province\n7;Mosel\n"), dataset.LoadOptions{Delimiter: ','})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tb.Columns) != 2 || tb.Columns[1] != "id;province" {
		t.Fatalf("expected a single data column, got %q", tb.Columns)
	}
}
