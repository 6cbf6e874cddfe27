package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	loggerKey contextKey = iota
	runIDKey
)

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// WithRunID tags every log line of one reconciliation run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return withStr(context.WithValue(ctx, runIDKey, runID), "run_id", runID)
}

// RunID returns the run id stored by WithRunID.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithFile tags log lines with the workbook being processed.
func WithFile(ctx context.Context, path string) context.Context {
	return withStr(ctx, "file", path)
}

// WithSheet tags log lines with the sheet being processed.
func WithSheet(ctx context.Context, sheet string) context.Context {
	return withStr(ctx, "sheet", sheet)
}

// WithOperation tags log lines with the pipeline stage.
func WithOperation(ctx context.Context, operation string) context.Context {
	return withStr(ctx, "operation", operation)
}

func withStr(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}
