package workbook

import (
	"slices"
	"strings"

	"github.com/agentstation/fcupdater/pkg/normalize"
)

// Column is one expected header column.
type Column struct {
	ID       string
	Labels   []string
	Required bool
}

// Vocabulary is the set of header labels a role expects.
type Vocabulary []Column

// HeaderMap maps column ids to 0-based column indexes of one sheet.
type HeaderMap struct {
	// Row is the 0-based index of the header row; data starts at Row+1.
	Row     int
	Columns map[string]int
}

// Line returns the 1-based sheet row of the header.
func (h HeaderMap) Line() int {
	return h.Row + 1
}

// Index returns the column index of id.
func (h HeaderMap) Index(id string) (int, bool) {
	c, ok := h.Columns[id]
	return c, ok
}

// Has reports whether id was found.
func (h HeaderMap) Has(id string) bool {
	_, ok := h.Columns[id]
	return ok
}

// Cell returns the trimmed value of column id in row, or "" when the
// column is unmapped or the row is short.
func (h HeaderMap) Cell(row []string, id string) string {
	c, ok := h.Columns[id]
	if !ok || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

// Width returns one past the rightmost mapped column.
func (h HeaderMap) Width() int {
	w := 0
	for _, c := range h.Columns {
		w = max(w, c+1)
	}
	return w
}

// DiscoverHeader scans the first scanRows rows (and scanCols columns; zero
// means all) for the first row carrying every required label of v.
func DiscoverHeader(rows [][]string, v Vocabulary, scanRows, scanCols int) (HeaderMap, bool) {
	labels := make(map[string]string)
	for _, col := range v {
		for _, l := range col.Labels {
			labels[normalize.Header(l)] = col.ID
		}
	}

	limit := min(scanRows, len(rows))
	for r := 0; r < limit; r++ {
		found := make(map[string]int)
		for c, cell := range rows[r] {
			if scanCols > 0 && c >= scanCols {
				break
			}
			id, ok := labels[normalize.Header(cell)]
			if !ok {
				continue
			}
			if _, dup := found[id]; !dup {
				found[id] = c
			}
		}
		if complete(found, v) {
			return HeaderMap{Row: r, Columns: found}, true
		}
	}
	return HeaderMap{}, false
}

func complete(found map[string]int, v Vocabulary) bool {
	for _, col := range v {
		if _, ok := found[col.ID]; col.Required && !ok {
			return false
		}
	}
	return true
}

// Relaxed returns a copy of v in which only the columns listed in keep are
// required.
func (v Vocabulary) Relaxed(keep ...string) Vocabulary {
	out := make(Vocabulary, len(v))
	for i, col := range v {
		col.Required = col.Required && slices.Contains(keep, col.ID)
		out[i] = col
	}
	return out
}

// Missing returns the first label of every required column of v that h
// does not map.
func (v Vocabulary) Missing(h HeaderMap) []string {
	var out []string
	for _, col := range v {
		if col.Required && !h.Has(col.ID) {
			out = append(out, col.Labels[0])
		}
	}
	return out
}

// Labels returns the first label of every column, in vocabulary order.
func (v Vocabulary) Labels() []string {
	out := make([]string, len(v))
	for i, col := range v {
		out[i] = col.Labels[0]
	}
	return out
}
