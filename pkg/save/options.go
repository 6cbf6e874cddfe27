package save

import (
	"context"
	"time"

	"github.com/agentstation/fcupdater/internal/proc"
)

// VerifyFunc checks a written container before it is promoted.
type VerifyFunc func(ctx context.Context, path string) error

// Options is the configuration for save.
type Options struct {
	fast         bool
	durable      bool
	archiveCheck bool
	runner       proc.Runner
	timeout      time.Duration
	verify       VerifyFunc
}

// Fast reports whether verification is skipped.
func (s *Options) Fast() bool {
	return s.fast
}

// Durable reports whether fsync failures are fatal.
func (s *Options) Durable() bool {
	return s.durable
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		runner: proc.NewRunner(),
		verify: func(_ context.Context, path string) error { return Verify(path) },
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFast skips post-write verification.
func WithFast(fast bool) Option {
	return func(s *Options) {
		s.fast = fast
	}
}

// WithDurability makes fsync failures of the file and its directory fatal.
// Without it they are logged.
func WithDurability(strict bool) Option {
	return func(s *Options) {
		s.durable = strict
	}
}

// WithArchiveCheck runs "unzip -tqq" through r after the built-in
// verification. A missing or timed out unzip is logged and skipped.
func WithArchiveCheck(r proc.Runner, timeout time.Duration) Option {
	return func(s *Options) {
		s.archiveCheck = true
		s.runner = r
		s.timeout = timeout
	}
}

// WithVerifier replaces the built-in verification.
func WithVerifier(v VerifyFunc) Option {
	return func(s *Options) {
		if v != nil {
			s.verify = v
		}
	}
}
