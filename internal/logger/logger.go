// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel overrides the configured level when set. A --log-level flag
// overrides it in turn.
const EnvLevel = "TEXTCLEAN_LOG_LEVEL"

func levelFromString(s string) (l slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug, true
	case "info", "inf":
		return slog.LevelInfo, true
	case "warn", "wrn":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a text logger writing to w at level. Unknown levels fall back
// to info.
func New(w io.Writer, level string) *slog.Logger {
	l, _ := levelFromString(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// Level returns the level named by the TEXTCLEAN_LOG_LEVEL environment
// variable, or configured when it is unset. An explicit command-line level
// should be applied after this and win over both.
func Level(configured string) string {
	if env := os.Getenv(EnvLevel); env != "" {
		return env
	}
	return configured
}

// Init installs a text logger on w as the slog default and returns it.
//
// Servers must log to stderr: stdout carries the MCP protocol.
func Init(w io.Writer, level string) *slog.Logger {
	logger := New(w, level)
	slog.SetDefault(logger)
	return logger
}
