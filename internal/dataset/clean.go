package dataset

import "strings"

// DefaultRequired lists the columns a row must carry to survive cleaning.
var DefaultRequired = []string{ColProvince, ColVariety}

// CleanStats summarizes what Clean dropped.
type CleanStats struct {
	Rows       int
	Duplicates int
	Missing    int
	Kept       int
}

// Clean drops exact duplicate rows (ignoring the id column, first occurrence
// wins) and rows missing any of the required columns. With no required
// columns given it uses DefaultRequired. Unknown required columns are
// ignored. Clean never fails and does not modify t.
func Clean(t *Table, required ...string) (*Table, CleanStats) {
	if len(required) == 0 {
		required = DefaultRequired
	}
	var req []int
	for _, c := range required {
		if j := t.Index(c); j >= 0 {
			req = append(req, j)
		}
	}

	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	st := CleanStats{Rows: len(t.Rows)}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			st.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		if missingAny(row, req) {
			st.Missing++
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	st.Kept = len(out.Rows)
	return out, st
}

// DuplicateCount reports how many rows repeat an earlier row on every column
// except the id.
func DuplicateCount(t *Table) int {
	seen := make(map[string]struct{}, len(t.Rows))
	n := 0
	for _, row := range t.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			n++
			continue
		}
		seen[key] = struct{}{}
	}
	return n
}

// rowKey joins every column but the id with NUL.
func rowKey(row []string) string {
	if len(row) <= 1 {
		return ""
	}
	return strings.Join(row[1:], "\x00")
}

func missingAny(row []string, cols []int) bool {
	for _, j := range cols {
		if j >= len(row) || IsMissing(row[j]) {
			return true
		}
	}
	return false
}
