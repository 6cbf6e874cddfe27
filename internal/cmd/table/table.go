// Package table converts run results into rows for table output.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/fcupdater"
	"github.com/agentstation/fcupdater/internal/deps"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/history"
	"github.com/agentstation/fcupdater/pkg/station"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// SummaryToTableData converts a run summary to a property/value table.
func SummaryToTableData(s *fcupdater.Summary) Data {
	rows := [][]string{
		{"Master", s.Master},
		{"Sources", strings.Join(s.Sources, "\n")},
		{"Master rows", strconv.Itoa(s.MasterRows)},
		{"Source rows", strconv.Itoa(s.SourceRows)},
		{"Changed", strconv.Itoa(s.Changed)},
		{"Added", strconv.Itoa(s.Added)},
		{"Removed", strconv.Itoa(s.Removed)},
		{"Unchanged", strconv.Itoa(s.Unchanged)},
		{"Conflicts", fmt.Sprintf("%d duplicates, %d overwritten", s.Conflicts.Duplicates, s.Conflicts.Overwritten)},
	}
	for _, c := range s.Conflicts.Samples {
		rows = append(rows, []string{"  " + c.Key, fmt.Sprintf("%s kept, %s ignored", origin(c.Selected), origin(c.Incoming))})
	}
	if len(s.AddedNames) > 0 {
		rows = append(rows, []string{"Added stations", nameList(s.AddedNames, s.Added)})
	}
	if len(s.RemovedNames) > 0 {
		rows = append(rows, []string{"Removed stations", nameList(s.RemovedNames, s.Removed)})
	}

	output := s.Output
	if s.DryRun {
		output += " (dry run, not written)"
	}
	rows = append(rows, []string{"Output", output})
	if s.Backup != "" {
		rows = append(rows, []string{"Backup", s.Backup})
	}
	if !s.DryRun {
		rows = append(rows,
			[]string{"Change log entries", strconv.Itoa(s.ChangeLogEntries)},
			[]string{"Verified", strconv.FormatBool(s.Verified)},
		)
	}
	rows = append(rows, []string{"Duration", s.Duration.Round(time.Millisecond).String()})

	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// RunsToTableData converts recorded runs to a table, one run per row.
func RunsToTableData(runs []history.Run) Data {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Time.Local().Format("2006-01-02 15:04:05"),
			r.Master,
			r.Output,
			strconv.Itoa(r.Changed),
			strconv.Itoa(r.Added),
			strconv.Itoa(r.Removed),
			strconv.Itoa(r.Conflicts),
		})
	}
	return Data{
		Headers: []string{"Started", "Master", "Output", "Changed", "Added", "Removed", "Conflicts"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignLeft, AlignLeft,
			AlignRight, AlignRight, AlignRight, AlignRight,
		},
	}
}

// DepsToTableData converts helper checks to a table, one helper per row.
func DepsToTableData(statuses []deps.Status) Data {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "missing"
		if s.Available {
			state = "ok"
		}
		rows = append(rows, []string{s.Name, state, s.Version, s.Purpose, s.Fallback})
	}
	return Data{
		Headers: []string{"Helper", "Status", "Version", "Used for", "Fallback"},
		Rows:    rows,
	}
}

func origin(o station.Origin) string {
	return fmt.Sprintf("%s:%d", o.File, o.Row)
}

// nameList joins names, noting how many were left out of the list.
func nameList(names []string, total int) string {
	out := strings.Join(names, ", ")
	if total > len(names) {
		out += fmt.Sprintf(" (+%d more, first %d shown)", total-len(names), constants.SummaryListLimit)
	}
	return out
}
