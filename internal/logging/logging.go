// Package logging configures the charmbracelet/log logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Options controls logger setup.
type Options struct {
	Level string // debug, info, warn, error
	File  string // Log file; empty writes to Fallback
	// Fallback receives logs when File is empty. Nil discards them,
	// which is what the TUI wants.
	Fallback io.Writer
	Prefix   string
}

// Setup builds a logger, installs it as the default and returns a
// function that closes the log file.
func Setup(opts Options) (*log.Logger, func() error, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		l, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = l
	}

	w := opts.Fallback
	if w == nil {
		w = io.Discard
	}
	closer := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closer = f.Close
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.File != "",
		TimeFormat:      time.RFC3339,
		Level:           level,
		Prefix:          opts.Prefix,
	})
	log.SetDefault(logger)

	return logger, closer, nil
}
