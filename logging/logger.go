/*
Package logging wraps log/slog with the pipeline's conventions.

PURPOSE:
  Every line of a run carries the run id, and every stage adds its own name,
  so a single run can be followed through the output with one filter.

FIELDS:
  run_id  uuid of the run
  stage   connect, extract, transform, load, notify, metrics
  source  hr or activities, during extraction
*/
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Field keys shared by every package.
const (
	KeyRunID  = "run_id"
	KeyStage  = "stage"
	KeySource = "source"
	KeyError  = "error"
)

// Logger wraps slog.Logger with the pipeline's field helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stderr. format is "json" or "text".
func New(level slog.Level, format string) *Logger {
	return NewWriter(os.Stderr, level, format)
}

// NewWriter creates a Logger writing to w.
func NewWriter(w io.Writer, level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func (l *Logger) WithRun(runID string) *Logger {
	return l.With(slog.String(KeyRunID, runID))
}

func (l *Logger) WithStage(stage string) *Logger {
	return l.With(slog.String(KeyStage, stage))
}

// Err is the attribute used for errors.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
