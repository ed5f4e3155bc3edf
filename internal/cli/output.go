package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/valuer/internal/dispatch"
	"github.com/roach88/valuer/internal/valuation"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected change, invalid draft or failed delivery
	ExitCommandError = 2 // Command error (bad arguments, unreadable config, database not opened)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Configuration invalid or unreadable
	ErrCodeStore        = "E003" // Database could not be opened
	ErrCodeInput        = "E004" // Input file unreadable or malformed
	ErrCodeRejected     = "E101" // Draft change rejected by validation
	ErrCodeItemNotFound = "E102" // No item with the given id
	ErrCodeUnknownField = "E103" // Not an editable item field
	ErrCodeComposition  = "E201" // Draft cannot be turned into a document
	ErrCodeDispatch     = "E301" // Delivery pipeline failed
	ErrCodeBusy         = "E302" // A delivery is already in progress
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that are not ExitErrors come from argument parsing and map to
// ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E101", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with fmt, so views implement fmt.Stringer.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err through the formatter and returns the ExitError the
// command should return. Delivery failures are reported with the generic
// notice only; the cause is in the log.
func (f *OutputFormatter) Fail(err error) error {
	code, message, details := classify(err)
	_ = f.Error(code, message, details)
	return WrapExitError(ExitFailure, message, err)
}

// FailCommand reports a setup error (config, database, input) with ExitCommandError.
// err may be nil when the message says it all.
func (f *OutputFormatter) FailCommand(code, message string, err error) error {
	if err == nil {
		_ = f.Error(code, message, nil)
		return NewExitError(ExitCommandError, message)
	}
	_ = f.Error(code, message+": "+err.Error(), nil)
	return WrapExitError(ExitCommandError, message, err)
}

func classify(err error) (code, message string, details any) {
	var ve *valuation.ValidationError
	var ce *valuation.CompositionError
	switch {
	case errors.As(err, &ve):
		return ErrCodeRejected, ve.Message, nil
	case errors.Is(err, valuation.ErrItemNotFound):
		return ErrCodeItemNotFound, err.Error(), nil
	case errors.Is(err, valuation.ErrUnknownField):
		return ErrCodeUnknownField, err.Error(), nil
	case errors.Is(err, dispatch.ErrInFlight):
		return ErrCodeBusy, err.Error(), nil
	case errors.As(err, &ce):
		return ErrCodeComposition, ce.Error(), nil
	}
	if step, ok := dispatch.FailedStep(err); ok {
		return ErrCodeDispatch, dispatch.UserNotice, map[string]string{"step": string(step)}
	}
	return ErrCodeGeneric, err.Error(), nil
}
