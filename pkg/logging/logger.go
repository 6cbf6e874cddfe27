// Package logging carries a zerolog logger through a reconciliation run.
//
// The CLI builds one logger from its configuration and stores it in the run
// context; every stage then logs through FromContext so that lines share the
// run id and, where set, the file, sheet and operation being processed.
//
//	ctx := logging.WithRunID(logging.WithLogger(ctx, &logger), runID)
//	logging.FromContext(logging.WithFile(ctx, path)).
//	    Debug().Int("row", 3).Msg("Header discovered")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agentstation/fcupdater/pkg/constants"
)

// Config selects level, format and destination of a logger.
type Config struct {
	// Level is trace, debug, info, warn or error. Unknown values mean info.
	Level string

	// Format is console, json or auto. Auto picks console on a terminal.
	Format string

	// Output is stderr, stdout, discard or a file path to append to.
	Output string

	NoColor   bool
	AddCaller bool
}

var defaultLogger = NewLoggerFromConfig(&Config{
	Level:  os.Getenv("LOG_LEVEL"),
	Format: os.Getenv("LOG_FORMAT"),
	Output: os.Getenv("LOG_OUTPUT"),
})

// Default returns the process-wide logger used when a context carries none.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// NewLoggerFromConfig builds a logger. A nil config yields an info-level
// logger on stderr.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer(cfg)).Level(level).With().Timestamp().Logger()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func writer(cfg *Config) io.Writer {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}

	console := false
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		console = true
	case "", "auto":
		f, ok := out.(*os.File)
		console = ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}
	if !console {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
