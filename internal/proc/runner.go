// Package proc runs external helper programs with a bounded wait.
//
// Callers receive typed errors so they can fall back to a built-in
// alternative: a missing binary yields a DependencyError, an elapsed
// timeout a TimeoutError and a non-zero exit a ProcessError.
package proc

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	pkgerrors "github.com/agentstation/fcupdater/pkg/errors"
)

// Command describes one helper invocation.
type Command struct {
	Name    string
	Args    []string
	Stdin   []byte
	Timeout time.Duration // zero means no limit beyond ctx
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes helper commands.
type Runner interface {
	// Run returns the command's stdout.
	Run(ctx context.Context, cmd Command) ([]byte, error)
	// Available reports whether the named helper can be run at all.
	Available(name string) bool
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the process is killed.
	WaitDelay time.Duration
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 500 * time.Millisecond}
}

// Available implements Runner.
func (r *ExecRunner) Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, pkgerrors.NewDependencyError(c.Name, "not found in PATH")
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	//nolint:gosec // helper names come from configuration, not from workbook content
	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.WaitDelay = r.WaitDelay
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, pkgerrors.NewTimeoutError(c.String(), c.Timeout.String(), "process killed")
	}
	if err != nil {
		perr := pkgerrors.NewProcessError(c.Name, c.String(), strings.TrimSpace(stderr.String()), err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return nil, perr
	}
	return stdout.Bytes(), nil
}
