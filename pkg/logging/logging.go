// Package logging configures the process-wide slog logger from the
// logging section of the configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zpam/sentimento/pkg/config"
)

// EnvLevel overrides the configured level when set (DEBUG, INFO, WARN, ERROR).
const EnvLevel = "SENTIMENTO_LOG_LEVEL"

var level = new(slog.LevelVar)

// Setup builds a logger from cfg, installs it as the slog default and
// returns a close function for the log file, if any.
func Setup(cfg config.LoggingConfig) (func() error, error) {
	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	slog.SetDefault(New(out, cfg))
	return closeFn, nil
}

// New builds a logger writing to w without touching the global default.
func New(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	level.Set(ParseLevel(cfg.Level))
	if env := os.Getenv(EnvLevel); env != "" {
		level.Set(ParseLevel(env))
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// SetLevel changes the level of loggers created by Setup or New.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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
