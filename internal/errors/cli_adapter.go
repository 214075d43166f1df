package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code selection.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr}
}

// ExitCodeFor determines the exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	be, ok := As(err)
	if !ok {
		return 1
	}
	switch be.Category {
	case CategoryValidation:
		return 2
	case CategoryConfig:
		return 3
	case CategoryFileSystem:
		return 4
	case CategoryContent:
		return 5
	default:
		return 1
	}
}

// FormatError formats an error for display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	be, ok := As(err)
	if !ok || a.verbose {
		return fmt.Sprintf("Error: %v", err)
	}
	if be.Cause != nil {
		return fmt.Sprintf("Error: %s: %v", be.Message, be.Cause)
	}
	return "Error: " + be.Message
}

// Report logs the error, prints it to stderr and returns the exit code.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}
	if be, ok := As(err); ok {
		attrs := []slog.Attr{slog.String("category", string(be.Category))}
		for k, v := range be.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		a.logger.LogAttrs(context.Background(), slog.LevelError, be.Message, attrs...)
	} else if a.verbose {
		a.logger.Error("Unclassified error", "error", err)
	}
	fmt.Fprintln(a.stderr, a.FormatError(err))
	return a.ExitCodeFor(err)
}
