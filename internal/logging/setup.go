package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FilePrefix starts the name of every run log file.
const FilePrefix = "prediction_pipeline_"

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return FilePrefix + t.Format("20060102_150405") + ".log"
}

// Setup returns a logger writing to stderr and, when logDir is not empty, to
// a new file in logDir. The returned closer closes the file; it is never nil.
func Setup(level, logDir string) (*slog.Logger, io.Closer, error) {
	return setup(os.Stderr, true, level, logDir, time.Now())
}

func setup(stderr io.Writer, color bool, level, logDir string, now time.Time) (*slog.Logger, io.Closer, error) {
	lev := ParseLogLevel(level)
	cli := NewCLIHandler(stderr, lev, color)
	if logDir == "" {
		return slog.New(cli), nopCloser{}, nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(logDir, FileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	file := slog.NewTextHandler(f, &slog.HandlerOptions{Level: lev})
	return slog.New(fanout{cli, file}), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
