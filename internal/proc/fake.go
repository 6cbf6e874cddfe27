package proc

import (
	"context"
	"sync"
)

// Func adapts a function to the Runner interface. Every helper is reported
// available; the function decides the outcome. Tests use it to simulate
// missing, slow and failing helpers.
type Func func(ctx context.Context, cmd Command) ([]byte, error)

// Run implements Runner.
func (f Func) Run(ctx context.Context, cmd Command) ([]byte, error) {
	return f(ctx, cmd)
}

// Available implements Runner.
func (f Func) Available(string) bool {
	return true
}

// Recorder wraps a Runner and remembers every command it was asked to run.
type Recorder struct {
	Runner Runner

	mu       sync.Mutex
	commands []Command
}

// Run implements Runner.
func (r *Recorder) Run(ctx context.Context, cmd Command) ([]byte, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()
	return r.Runner.Run(ctx, cmd)
}

// Available implements Runner.
func (r *Recorder) Available(name string) bool {
	return r.Runner.Available(name)
}

// Commands returns the recorded invocations.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}
