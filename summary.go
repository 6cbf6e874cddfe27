package fcupdater

import (
	"fmt"
	"time"

	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/differ"
	"github.com/agentstation/fcupdater/pkg/sources"
)

// Summary reports what a run did.
type Summary struct {
	RunID   string   `json:"run_id" yaml:"run_id"`
	Today   string   `json:"today" yaml:"today"`
	Master  string   `json:"master" yaml:"master"`
	Sources []string `json:"sources" yaml:"sources"`

	MasterRows int `json:"master_rows" yaml:"master_rows"`
	SourceRows int `json:"source_rows" yaml:"source_rows"`
	Changed    int `json:"changed" yaml:"changed"`
	Added      int `json:"added" yaml:"added"`
	Removed    int `json:"removed" yaml:"removed"`
	Unchanged  int `json:"unchanged" yaml:"unchanged"`

	Conflicts sources.ConflictSummary `json:"conflicts" yaml:"conflicts"`

	// AddedNames and RemovedNames hold the first names, in change-log order.
	AddedNames   []string `json:"added_names,omitempty" yaml:"added_names,omitempty"`
	RemovedNames []string `json:"removed_names,omitempty" yaml:"removed_names,omitempty"`

	Output           string        `json:"output" yaml:"output"`
	Backup           string        `json:"backup,omitempty" yaml:"backup,omitempty"`
	ChangeLogEntries int           `json:"change_log_entries" yaml:"change_log_entries"`
	Verified         bool          `json:"verified" yaml:"verified"`
	DryRun           bool          `json:"dry_run" yaml:"dry_run"`
	Duration         time.Duration `json:"duration" yaml:"duration"`
}

// HasChanges reports whether any row was changed, added or removed.
func (s *Summary) HasChanges() bool {
	return s.Changed+s.Added+s.Removed > 0
}

// String returns a one-line description of the run.
func (s *Summary) String() string {
	out := fmt.Sprintf("%d changed, %d added, %d removed, %d conflicts", s.Changed, s.Added, s.Removed, s.Conflicts.Duplicates)
	if s.DryRun {
		return out + " (dry run)"
	}
	return out + " -> " + s.Output
}

func names(records []differ.ChangeRecord) []string {
	n := min(len(records), constants.SummaryListLimit)
	out := make([]string, 0, n)
	for _, r := range records[:n] {
		out = append(out, r.Name())
	}
	return out
}
