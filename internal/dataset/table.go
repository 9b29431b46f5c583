package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IDColumn is the explicit identifier column. The unnamed leading index
// column of the source file is renamed to it on load.
const IDColumn = "id"

// LoadOptions controls how a delimited file is read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files, otherwise the most
	// frequent of ',', ';' and '\t' on the header line.
	Delimiter rune
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
}

// Table is an in-memory view of a delimited file. Column 0 is always the id.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Load reads a delimited file into a Table.
func Load(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data: %w", err)
	}
	defer f.Close()
	br := bufio.NewReaderSize(f, sniffBytes)
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path, br)
	}
	return Read(br, filepath.Base(path), opt)
}

// Read reads delimited data from r. name is used for reporting only.
func Read(r io.Reader, name string, opt LoadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file %s", name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}
	// A blank first header is the pandas-style index column.
	hasIndex := len(header) > 0 && (header[0] == "" || strings.EqualFold(header[0], "unnamed: 0") || strings.EqualFold(header[0], IDColumn))
	cols := header
	if hasIndex {
		cols[0] = IDColumn
	} else {
		cols = append([]string{IDColumn}, header...)
	}
	ncol := len(cols)

	t := &Table{Name: name, Columns: cols}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if opt.MaxRows > 0 && len(t.Rows) >= opt.MaxRows {
			break
		}
		row := make([]string, ncol)
		if hasIndex {
			copy(row, rec)
		} else {
			row[0] = strconv.Itoa(line - 1)
			copy(row[1:], rec)
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Index returns the position of a column by case-insensitive name, or -1.
func (t *Table) Index(name string) int {
	name = strings.TrimSpace(name)
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Value returns the cell at row i for the named column, or "" when the
// column does not exist.
func (t *Table) Value(i int, col string) string {
	j := t.Index(col)
	if j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// IsMissing reports whether a cell counts as a missing value.
func IsMissing(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "NaN", "nan", "NULL", "null":
		return true
	}
	return false
}

func sniffDelimiter(path string, br *bufio.Reader) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	// short files return what they have with io.EOF
	head, _ := br.Peek(sniffBytes)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	return headerDelimiter(string(head))
}

const sniffBytes = 64 * 1024

// headerDelimiter picks the most frequent candidate delimiter outside
// quotes, preferring ',' on ties.
func headerDelimiter(line string) rune {
	counts := map[rune]int{}
	quoted := false
	for _, r := range line {
		switch r {
		case '"':
			quoted = !quoted
		case ',', ';', '\t':
			if !quoted {
				counts[r]++
			}
		}
	}
	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}
