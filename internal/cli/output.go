package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/program"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // rejected instruction, failed scenarios
	ExitCommandError = 2 // bad arguments, unreadable key or config, unopenable database
)

// ExitError carries the process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set when the error was already written to the command
	// output, so Execute does not print it again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that are not an
// ExitError count as ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}

// CLIResponse is the JSON envelope of every command result.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of CLIResponse. Code is one of the stable
// error codes (NOT_FOUND, UNAUTHORIZED, ...).
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// textView is a payload that renders its own text format. Payloads that
// don't implement it are printed with %v.
type textView interface {
	writeText(w io.Writer) error
}

// OutputFormatter writes command results as JSON envelopes or text.
// Diagnostics go to ErrWriter so they never mix into JSON output.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

func (f *OutputFormatter) encode(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success writes data.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	return writeText(f.Writer, data)
}

// Error writes a failure with code. In text mode details are only shown
// when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if !f.Verbose || details == nil {
		return nil
	}
	return writeText(f.Writer, details)
}

// Fail reports a rejected operation and returns the ExitError the command
// should return. Errors raised by a program carry their op, address and
// field as details.
func (f *OutputFormatter) Fail(op string, err error) error {
	var details any
	if d, ok := failureOf(err); ok {
		details = d
	}
	if werr := f.Error(program.ErrorCode(err), err.Error(), details); werr != nil {
		return werr
	}
	return &ExitError{Code: ExitFailure, Message: op, Err: err, Reported: true}
}

// VerboseLog writes a diagnostic line when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}

func writeText(w io.Writer, data any) error {
	if v, ok := data.(textView); ok {
		return v.writeText(w)
	}
	_, err := fmt.Fprintln(w, data)
	return err
}

// failureDetails locates a rejected operation.
type failureDetails struct {
	Op      string      `json:"op,omitempty"`
	Address *ir.Address `json:"address,omitempty"`
	Field   string      `json:"field,omitempty"`
}

func failureOf(err error) (failureDetails, bool) {
	var e *ir.Error
	if !errors.As(err, &e) {
		return failureDetails{}, false
	}
	d := failureDetails{Op: e.Op, Field: e.Field}
	if e.Address != (ir.Address{}) {
		addr := e.Address
		d.Address = &addr
	}
	return d, d != (failureDetails{})
}

func (d failureDetails) writeText(w io.Writer) error {
	fields := make([][2]string, 0, 3)
	if d.Op != "" {
		fields = append(fields, [2]string{"op", d.Op})
	}
	if d.Address != nil {
		fields = append(fields, [2]string{"address", d.Address.String()})
	}
	if d.Field != "" {
		fields = append(fields, [2]string{"field", d.Field})
	}
	return writeFields(w, fields)
}

// writeFields writes indented "label: value" lines with aligned values.
func writeFields(w io.Writer, fields [][2]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, kv := range fields {
		fmt.Fprintf(tw, "  %s:\t%s\n", kv[0], kv[1])
	}
	return tw.Flush()
}
