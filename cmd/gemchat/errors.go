package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/elee1766/gemchat/src/config"
	"github.com/elee1766/gemchat/src/gemini"
	"github.com/elee1766/gemchat/src/session"
	"github.com/elee1766/gemchat/src/storage"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error
	ExitUsage       = 2 // Usage error
	ExitConfig      = 3 // Configuration error
	ExitAuth        = 4 // Authentication error
	ExitPermission  = 5 // Permission error
	ExitNetwork     = 6 // Network error
	ExitTimeout     = 7 // Timeout error
	ExitInterrupted = 8 // Interrupted by user
)

// ErrorHandler handles different types of errors and exits with appropriate codes
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError handles an error and exits with the appropriate code
func (h *ErrorHandler) HandleError(err error) {
	if err == nil {
		return
	}

	code := exitCode(err)
	h.logger.Debug("command failed", "error", err, "exit_code", code)

	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	os.Exit(code)
}

// exitCode determines the appropriate exit code for an error
func exitCode(err error) int {
	var cfgErr *configError
	var apiErr *gemini.APIError

	switch {
	case errors.Is(err, config.ErrMissingAPIKey), errors.As(err, &cfgErr):
		return ExitConfig
	case errors.As(err, &apiErr):
		if apiErr.IsAuthError() {
			return ExitAuth
		}
		return ExitNetwork
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(err, fs.ErrPermission):
		return ExitPermission
	case errors.Is(err, storage.ErrEmptyName),
		errors.Is(err, storage.ErrThreadNotFound),
		errors.Is(err, session.ErrNameRequired),
		errors.Is(err, errInvalidArgument):
		return ExitUsage
	default:
		return ExitError
	}
}

// errInvalidArgument marks bad command arguments that kong cannot catch
var errInvalidArgument = errors.New("invalid argument")
