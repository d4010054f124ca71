// Package logging builds the process logger. Components receive the logger
// by injection; nothing here is consulted after startup.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/fregataa/aami-check-runner/internal/config"
)

// New constructs a zerolog.Logger from the logging config. If the log file
// cannot be opened the logger falls back to stderr rather than failing the
// run; a node with a read-only /var/log should still execute checks.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		if f, err := openLogFile(cfg.File); err == nil {
			out = f
		}
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "aami-check").Logger()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
