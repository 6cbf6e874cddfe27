// Package reconciler matches the master stations against the source index
// and produces the updated table together with its change records.
//
// Master rows keep their order. Matched rows are updated in place, rows
// without a source are removed and unmatched source records are appended in
// the order they were read.
package reconciler

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/agentstation/fcupdater/pkg/differ"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
	"github.com/agentstation/fcupdater/pkg/sources"
	"github.com/agentstation/fcupdater/pkg/station"
	"github.com/agentstation/fcupdater/pkg/workbook"
)

// Reconciler is the main interface for reconciling a master with its sources.
type Reconciler interface {
	// Reconcile compares every master row with the source index. The master
	// table is not modified.
	Reconcile(ctx context.Context, master *workbook.Table, ix *sources.Index) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	differ differ.Differ
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{differ: options.differ}, nil
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, master *workbook.Table, ix *sources.Index) (*Result, error) {
	if master == nil {
		return nil, errors.NewValidationError("master", nil, "cannot be nil")
	}
	if ix == nil {
		return nil, errors.NewValidationError("index", nil, "cannot be nil")
	}

	logger := logging.FromContext(logging.WithOperation(ctx, "reconcile"))
	start := utc.Now()

	d := r.differ
	if d == nil {
		// Columns the master does not carry are never compared, otherwise
		// every run would report them as changed.
		d = differ.New(differ.WithIgnoredFields(missingFields(master.Header)...))
	}

	updated := &workbook.Table{
		Path:   master.Path,
		Format: master.Format,
		Sheet:  master.Sheet,
		Header: master.Header,
		Sheets: master.Sheets,
		Book:   master.Book,
		Rows:   make([]workbook.Row, 0, len(master.Rows)),
	}
	cs := &differ.Changeset{}
	var removed []int
	stats := ResultStatistics{MasterRows: len(master.Rows), SourceKeys: ix.Len()}

	consumed := make(map[string]bool)
	for _, row := range master.Rows {
		src, ok := ix.Lookup(row.Record.Key())
		if !ok {
			removed = append(removed, row.Line)
			cs.Removed = append(cs.Removed, differ.Removed(row.Record))
			logger.Debug().
				Int("row", row.Line).
				Str("name", row.Record.Name).
				Str("key", row.Record.Key()).
				Msg("Station not in any source")
			continue
		}
		consumed[src.Key()] = true
		stats.Matched++

		rec, change := d.Compare(row.Record, src)
		out := workbook.Row{Line: row.Line, Record: rec}
		if change == nil {
			stats.Unchanged++
		} else {
			for _, fc := range change.Changes {
				out.Changed = append(out.Changed, fc.Field)
			}
			cs.Updated = append(cs.Updated, *change)
			logger.Debug().
				Int("row", row.Line).
				Str("name", rec.Name).
				Str("reasons", change.Reasons.String()).
				Msg("Station updated")
		}
		updated.Rows = append(updated.Rows, out)
	}

	for _, rec := range ix.Entries() {
		if rec.HasKey() && consumed[rec.Key()] {
			continue
		}
		updated.Rows = append(updated.Rows, workbook.Row{Record: rec.Clone()})
		cs.Added = append(cs.Added, differ.Added(rec))
	}

	end := utc.Now()
	logger.Info().
		Int("updated", len(cs.Updated)).
		Int("added", len(cs.Added)).
		Int("removed", len(cs.Removed)).
		Int("conflicts", ix.Conflicts.Duplicates).
		Msg("Reconciled master with sources")

	return &Result{
		Table:     updated,
		Removed:   removed,
		Changeset: cs,
		Conflicts: ix.Conflicts,
		Metadata: ResultMetadata{
			StartTime: start,
			EndTime:   end,
			Duration:  end.Time.Sub(start.Time),
			Stats:     stats,
		},
	}, nil
}

var optionalFields = []station.Field{
	station.FieldBrand,
	station.FieldSelf,
	station.FieldPhone,
	station.FieldRegular,
	station.FieldPremium,
	station.FieldDiesel,
}

// missingFields lists the optional columns absent from h.
func missingFields(h workbook.HeaderMap) []station.Field {
	var out []station.Field
	for _, f := range optionalFields {
		if !h.Has(string(f)) {
			out = append(out, f)
		}
	}
	return out
}
