// Package logging provides the structured logger every component in the
// core is constructed with: one zerolog.Logger per component, carrying
// request-scoped fields (run ID, URL, stage) added via With().
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger for a run. pretty selects a human-readable
// console writer (for --debug / interactive use); the default is
// newline-delimited JSON suitable for log aggregation.
func New(level string, pretty bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	var writer io.Writer = out
	if pretty {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	logger = logger.Level(parseLevel(level))

	return logger
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with the owning component name,
// e.g. logging.Component(root, "frontier").
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// WithRun tags a logger with the run ID shared by every log line in one
// orchestrator invocation.
func WithRun(logger zerolog.Logger, runID string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Logger()
}
