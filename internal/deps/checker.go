// Package deps reports which external helpers fcupdater can use on this
// system. Every helper is optional; a missing one falls back to a built-in.
package deps

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agentstation/fcupdater/internal/proc"
)

// Helper describes an external command fcupdater may call.
type Helper struct {
	Name        string   `json:"name" yaml:"name"`
	Purpose     string   `json:"purpose" yaml:"purpose"`
	Fallback    string   `json:"fallback" yaml:"fallback"`
	VersionArgs []string `json:"-" yaml:"-"`
}

// Status is the result of checking one helper.
type Status struct {
	Helper    `yaml:",inline"`
	Available bool   `json:"available" yaml:"available"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Helpers are the external commands known to fcupdater.
var Helpers = []Helper{
	{
		Name:        "date",
		Purpose:     "run date (date +%F)",
		Fallback:    "built-in clock",
		VersionArgs: []string{"--version"},
	},
	{
		Name:        "iconv",
		Purpose:     "legacy text decoding when decoder_helper=iconv",
		Fallback:    "built-in CP949 tables",
		VersionArgs: []string{"--version"},
	},
	{
		Name:        "unzip",
		Purpose:     "archive test when archive_check is set",
		Fallback:    "built-in structural verification only",
		VersionArgs: []string{"-v"},
	},
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// Check reports whether helper is on the PATH and, if so, its version.
// A helper that is present but fails to print a version is still available.
func Check(ctx context.Context, r proc.Runner, h Helper, timeout time.Duration) Status {
	status := Status{Helper: h}
	if !r.Available(h.Name) {
		status.Error = fmt.Sprintf("%s not found in PATH", h.Name)
		return status
	}
	status.Available = true

	if len(h.VersionArgs) == 0 {
		return status
	}
	out, err := r.Run(ctx, proc.Command{Name: h.Name, Args: h.VersionArgs, Timeout: timeout})
	if err != nil {
		status.Error = fmt.Sprintf("could not detect version: %v", err)
		return status
	}
	status.Version = extractVersion(string(out))
	return status
}

// CheckAll checks every known helper in order.
func CheckAll(ctx context.Context, r proc.Runner, timeout time.Duration) []Status {
	statuses := make([]Status, 0, len(Helpers))
	for _, h := range Helpers {
		statuses = append(statuses, Check(ctx, r, h, timeout))
	}
	return statuses
}

// Missing returns the names of the helpers that are not available.
func Missing(statuses []Status) []string {
	var names []string
	for _, s := range statuses {
		if !s.Available {
			names = append(names, s.Name)
		}
	}
	return names
}

// extractVersion returns the first dotted version number on the first line
// of output, or "".
func extractVersion(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	if m := versionPattern.FindStringSubmatch(line); len(m) > 1 {
		return m[1]
	}
	return ""
}
