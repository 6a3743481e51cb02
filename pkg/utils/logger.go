package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewFileLogger opens (appending) the run log at path and returns a text
// logger writing to it. Every record carries the source location and the
// run_id attribute. The returned closer closes the file.
//
// PARAMETERS:
//   - path: The log file. Its directory is created if missing.
//   - verbose: Log debug records too.
//   - runID: The identifier of the run, see NewRunID.
func NewFileLogger(path string, verbose bool, runID string) (*slog.Logger, io.Closer, error) {
	if err := EnsureDirectory(filepath.Dir(path)); err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewLogger(file, verbose).With("run_id", runID), file, nil
}

// NewLogger returns a text logger writing to w.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
