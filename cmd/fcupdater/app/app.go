// Package app provides the application shell of the fcupdater CLI:
// configuration, logging and the root command.
package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/fcupdater"
	"github.com/agentstation/fcupdater/internal/proc"
)

// App represents the fcupdater application with its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer
	runner proc.Runner

	// Options appended to every updater this app creates.
	extra []fcupdater.Option
}

// Option configures an App.
type Option func(*App) error

// New creates a new App with the given version information. Configuration
// is loaded from the environment and the default config file locations.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		out:     os.Stdout,
		runner:  proc.NewRunner(),
	}

	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// WithConfig replaces the loaded configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = &logger
		return nil
	}
}

// WithOutput sets where command results are written.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithRunner sets the process collaborator used for external helpers.
func WithRunner(r proc.Runner) Option {
	return func(a *App) error {
		a.runner = r
		return nil
	}
}

// WithUpdaterOptions appends options to every updater the app creates.
func WithUpdaterOptions(opts ...fcupdater.Option) Option {
	return func(a *App) error {
		a.extra = append(a.extra, opts...)
		return nil
	}
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns who built the binary.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Shutdown releases application resources. A run holds nothing between
// commands, so there is nothing to flush.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Shutting down")
	return nil
}

// Updater creates an updater from the configuration and the given run
// options. Run options override the configured ones.
func (a *App) Updater(opts ...fcupdater.Option) (fcupdater.Updater, error) {
	cfg := a.config
	base := []fcupdater.Option{
		fcupdater.WithStrictDecoding(cfg.CP949Strict),
		fcupdater.WithDurability(cfg.DurabilityStrict),
		fcupdater.WithDecoderHelper(cfg.DecoderHelper),
		fcupdater.WithArchiveCheck(cfg.ArchiveCheck),
		fcupdater.WithHistory(cfg.HistoryDB),
		fcupdater.WithLimits(cfg.Limits),
		fcupdater.WithRunner(a.runner),
	}
	base = append(base, opts...)
	base = append(base, a.extra...)
	return fcupdater.New(base...)
}

