package sources

import (
	"context"

	"github.com/agentstation/fcupdater/pkg/logging"
	"github.com/agentstation/fcupdater/pkg/station"
	"github.com/agentstation/fcupdater/pkg/workbook"
)

// FileSet is the decoded content of every source workbook.
type FileSet struct {
	Paths  []string
	Tables []*workbook.Table
}

// Load reads every path as a source. Reading stops at the first failure:
// a skipped source would make all of its stations look closed.
func Load(ctx context.Context, r *workbook.Reader, paths []string) (*FileSet, error) {
	logger := logging.FromContext(ctx)
	set := &FileSet{}
	for _, p := range paths {
		t, err := r.Read(logging.WithFile(ctx, p), p, workbook.RoleSource)
		if err != nil {
			return nil, err
		}
		// Only the rows are needed; release the package right away.
		_ = t.Close()
		t.Book = nil

		logger.Debug().
			Str("file", p).
			Strs("sheets", t.Sheets).
			Int("rows", len(t.Rows)).
			Msg("Source loaded")
		set.Paths = append(set.Paths, p)
		set.Tables = append(set.Tables, t)
	}
	return set, nil
}

// Rows returns the number of source records.
func (s *FileSet) Rows() int {
	n := 0
	for _, t := range s.Tables {
		n += len(t.Rows)
	}
	return n
}

// Conflict is one duplicate source address.
type Conflict struct {
	Key      string         `json:"key" yaml:"key"`
	Previous station.Origin `json:"previous" yaml:"previous"`
	Incoming station.Origin `json:"incoming" yaml:"incoming"`
	Selected station.Origin `json:"selected" yaml:"selected"`
}

// ConflictSummary reports duplicate source addresses.
type ConflictSummary struct {
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	// Overwritten counts duplicates that replaced an earlier record. It stays
	// zero while the first record wins.
	Overwritten int        `json:"overwritten" yaml:"overwritten"`
	Samples     []Conflict `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Index maps normalized addresses to source records.
type Index struct {
	byKey     map[string]int
	entries   []station.Record
	Conflicts ConflictSummary
}

// BuildIndex indexes the records of set in file, sheet and row order. The
// first record of a key wins; at most maxSamples conflicts are kept as
// examples. Records without a key are kept as entries but cannot be looked up.
func BuildIndex(set *FileSet, maxSamples int) *Index {
	ix := &Index{byKey: make(map[string]int)}
	for _, t := range set.Tables {
		for _, row := range t.Rows {
			rec := row.Record
			if !rec.HasKey() {
				ix.entries = append(ix.entries, rec)
				continue
			}
			if i, dup := ix.byKey[rec.Key()]; dup {
				ix.Conflicts.Duplicates++
				if len(ix.Conflicts.Samples) < maxSamples {
					prev := ix.entries[i].Origin
					ix.Conflicts.Samples = append(ix.Conflicts.Samples, Conflict{
						Key:      rec.Key(),
						Previous: prev,
						Incoming: rec.Origin,
						Selected: prev,
					})
				}
				continue
			}
			ix.byKey[rec.Key()] = len(ix.entries)
			ix.entries = append(ix.entries, rec)
		}
	}
	return ix
}

// Lookup returns the source record of key. A blank key never matches.
func (ix *Index) Lookup(key string) (station.Record, bool) {
	if key == "" {
		return station.Record{}, false
	}
	i, ok := ix.byKey[key]
	if !ok {
		return station.Record{}, false
	}
	return ix.entries[i], true
}

// Entries returns the indexed records in encounter order.
func (ix *Index) Entries() []station.Record {
	return ix.entries
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.entries)
}
