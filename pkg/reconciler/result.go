package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/fcupdater/pkg/differ"
	"github.com/agentstation/fcupdater/pkg/sources"
	"github.com/agentstation/fcupdater/pkg/workbook"
)

// Result represents the outcome of a reconciliation.
type Result struct {
	// Table holds the kept master rows, updated in place, followed by the
	// new rows (Line 0).
	Table *workbook.Table
	// Removed lists the master sheet lines to delete.
	Removed []int

	Changeset *differ.Changeset
	Conflicts sources.ConflictSummary

	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	StartTime utc.Time
	EndTime   utc.Time
	Duration  time.Duration
	Stats     ResultStatistics
}

// ResultStatistics contains statistics about the reconciliation.
type ResultStatistics struct {
	MasterRows int
	SourceKeys int
	Matched    int
	Unchanged  int
}

// HasChanges returns true if any changes were detected.
func (r *Result) HasChanges() bool {
	return r.Changeset != nil && r.Changeset.HasChanges()
}

// Summary returns a one-line description of the result.
func (r *Result) Summary() string {
	if r.Changeset == nil {
		return "No changes detected"
	}
	return fmt.Sprintf("%s, %d conflicts", r.Changeset, r.Conflicts.Duplicates)
}
