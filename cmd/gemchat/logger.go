package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elee1766/gemchat/src/config"
	"github.com/lmittmann/tint"
)

// createREPLLogger creates a logger that doesn't interfere with the chat
// by writing to a file instead of stdout/stderr
func createREPLLogger(logLevel, path string) (*slog.Logger, io.Closer) {
	if path == "" {
		path = config.DefaultLogPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return discardLogger(), nopCloser{}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return discardLogger(), nopCloser{}
	}

	return slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: parseLogLevel(logLevel),
	})), file
}

// createCLILogger creates a logger for one-shot commands that writes to stderr
func createCLILogger(logLevel string) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLogLevel(logLevel),
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
