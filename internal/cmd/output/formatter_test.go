package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fcupdater"
	"github.com/agentstation/fcupdater/internal/deps"
	"github.com/agentstation/fcupdater/pkg/sources"
	"github.com/agentstation/fcupdater/pkg/station"
)

func summary() *fcupdater.Summary {
	return &fcupdater.Summary{
		RunID:      "run-1",
		Today:      "2026-10-16",
		Master:     "master.xlsx",
		Sources:    []string{"지역_위치별(주유소)_1.xlsx"},
		MasterRows: 2,
		SourceRows: 2,
		Changed:    1,
		Added:      1,
		Removed:    1,
		Conflicts: sources.ConflictSummary{
			Duplicates: 1,
			Samples: []sources.Conflict{{
				Key:      "대전서구111",
				Previous: station.Origin{File: "a.xlsx", Row: 3},
				Incoming: station.Origin{File: "b.xlsx", Row: 7},
				Selected: station.Origin{File: "a.xlsx", Row: 3},
			}},
		},
		AddedNames:   []string{"B"},
		RemovedNames: []string{"C"},
		Output:       "master_updated_2026-10-16.xlsx",
		Verified:     true,
		Duration:     1500 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, FormatYAML, DetectFormat("YAML", &buf))
	assert.Equal(t, FormatJSON, DetectFormat("", &buf), "non-terminal writers get JSON")
}

func TestFormatSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, summary()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "master.xlsx", got["master"])
	assert.EqualValues(t, 1, got["added"])
	assert.Equal(t, []any{"B"}, got["added_names"])
	assert.Contains(t, buf.String(), "지역_위치별(주유소)_1.xlsx", "non-ASCII text is not escaped")
}

func TestFormatSummaryYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, summary()))

	var got struct {
		Output    string `yaml:"output"`
		Removed   int    `yaml:"removed"`
		Conflicts struct {
			Duplicates int `yaml:"duplicates"`
		} `yaml:"conflicts"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "master_updated_2026-10-16.xlsx", got.Output)
	assert.Equal(t, 1, got.Removed)
	assert.Equal(t, 1, got.Conflicts.Duplicates)
}

func TestFormatSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, summary()))

	out := buf.String()
	for _, want := range []string{"master.xlsx", "Added stations", "B", "Removed stations", "1 duplicates", "a.xlsx:3 kept, b.xlsx:7 ignored", "1.5s"} {
		assert.Contains(t, out, want)
	}
}

func TestFormatDepsTable(t *testing.T) {
	var buf bytes.Buffer
	statuses := []deps.Status{
		{Helper: deps.Helpers[0], Available: true, Version: "9.4"},
		{Helper: deps.Helpers[1]},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, statuses))

	out := buf.String()
	assert.Contains(t, out, "9.4")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, deps.Helpers[1].Fallback)
}

func TestFormatTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}
