// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/agentstation/fcupdater"
	"github.com/agentstation/fcupdater/internal/cmd/table"
	"github.com/agentstation/fcupdater/internal/deps"
	"github.com/agentstation/fcupdater/pkg/history"
)

// Format is an output format name as accepted by --format.
type Format string

const (
	// FormatTable renders a bordered table.
	FormatTable Format = "table"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
)

// Formatter writes data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats render
// tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return jsonFormatter{indent: "  "}
	case FormatYAML:
		return yamlFormatter{}
	default:
		return tableFormatter{}
	}
}

// ParseFormat validates a --format value. The empty string is accepted and
// means "detect".
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case "", FormatTable, FormatJSON, FormatYAML:
		return format, nil
	}
	return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml", s)
}

// DetectFormat returns the explicit format if one is given. Otherwise it
// picks a table when w is a terminal and JSON for pipes, files and buffers.
func DetectFormat(explicit string, w io.Writer) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatTable
	}
	return FormatJSON
}

type jsonFormatter struct {
	indent string
}

// Format writes data as JSON. Station names and addresses are Korean, so
// HTML escaping is off.
func (f jsonFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", f.indent)
	return enc.Encode(data)
}

type yamlFormatter struct{}

func (yamlFormatter) Format(w io.Writer, data any) error {
	return yaml.NewEncoder(w, yaml.Indent(2), yaml.IndentSequence(false)).Encode(data)
}

type tableFormatter struct{}

// Format renders the result types of the CLI as tables. Anything else falls
// back to JSON.
func (tableFormatter) Format(w io.Writer, data any) error {
	var td table.Data
	switch v := data.(type) {
	case table.Data:
		td = v
	case *fcupdater.Summary:
		td = table.SummaryToTableData(v)
	case []history.Run:
		td = table.RunsToTableData(v)
	case []deps.Status:
		td = table.DepsToTableData(v)
	default:
		return jsonFormatter{indent: "  "}.Format(w, data)
	}
	return render(w, td)
}

func render(w io.Writer, data table.Data) error {
	cfg := tablewriter.Config{}
	if align := alignments(data.ColumnAlignment); align != nil {
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: align}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}
	t := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))

	if len(data.Headers) > 0 {
		t.Header(cells(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := t.Append(cells(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func alignments(cols []table.Align) []tw.Align {
	if len(cols) == 0 {
		return nil
	}
	out := make([]tw.Align, len(cols))
	for i, a := range cols {
		switch a {
		case table.AlignLeft:
			out[i] = tw.AlignLeft
		case table.AlignCenter:
			out[i] = tw.AlignCenter
		case table.AlignRight:
			out[i] = tw.AlignRight
		default:
			out[i] = tw.Skip
		}
	}
	return out
}

// cells adapts a string row to tablewriter's variadic API.
func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
