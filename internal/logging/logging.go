// Package logging builds the application logger.
//
// The TUI owns the terminal, so nothing is written to stdout or stderr while it
// runs. Records go to a file in the data directory, and only when debugging is
// enabled.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file created inside the data directory
const FileName = "doable.log"

// Options controls where records are written
type Options struct {
	Debug   bool
	DataDir string
	// Stderr mirrors warnings and errors to stderr. Only CLI subcommands set it.
	Stderr bool
}

// Logger wraps slog with the file it may own
type Logger struct {
	*slog.Logger
	file *os.File
}

// New returns a logger for opts. With Debug off and Stderr off every record is
// discarded.
func New(opts Options) (*Logger, error) {
	var handlers []slog.Handler
	l := &Logger{}

	if opts.Debug {
		if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.DataDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if opts.Stderr {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	switch len(handlers) {
	case 0:
		l.Logger = Discard()
	case 1:
		l.Logger = slog.New(handlers[0])
	default:
		l.Logger = slog.New(fanout(handlers))
	}
	return l, nil
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
