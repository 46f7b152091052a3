package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures of record operations.
type ErrorCode string

const (
	// CodeAlreadyExists indicates a create targeted an occupied address.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeNotFound indicates an update, delete or cast on an empty address.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates the caller's proven identity is not the owner.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeFieldTooLong indicates input exceeds a field's byte budget.
	CodeFieldTooLong ErrorCode = "FIELD_TOO_LONG"

	// CodeDuplicateVote indicates the voter's receipt already exists.
	// It is a specialization of CodeAlreadyExists.
	CodeDuplicateVote ErrorCode = "DUPLICATE_VOTE"

	// CodeCorruptRecord indicates stored bytes do not decode as the
	// expected record kind.
	CodeCorruptRecord ErrorCode = "CORRUPT_RECORD"

	// CodeOverflow indicates a counter cannot be incremented further.
	CodeOverflow ErrorCode = "OVERFLOW"
)

// Error is the structured error returned by record operations.
//
// Sentinels (ErrNotFound, ...) match any Error with the same code through
// errors.Is, so callers can test categories without caring about the
// operation or address attached on the way out.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed, e.g. "update_todo".
	Op string

	// Address is the record address, zero when not yet known.
	Address Address

	// Field names the offending field for CodeFieldTooLong.
	Field string

	// Message is a human-readable description.
	Message string
}

// Sentinel errors for errors.Is matching.
var (
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "address already holds a record"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "no record at address"}
	ErrUnauthorized  = &Error{Code: CodeUnauthorized, Message: "caller is not the record owner"}
	ErrFieldTooLong  = &Error{Code: CodeFieldTooLong, Message: "field exceeds its byte budget"}
	ErrDuplicateVote = &Error{Code: CodeDuplicateVote, Message: "voter has already voted"}
	ErrCorruptRecord = &Error{Code: CodeCorruptRecord, Message: "stored record is malformed"}
	ErrOverflow      = &Error{Code: CodeOverflow, Message: "counter overflow"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Op != "" && e.Address != (Address{}):
		return fmt.Sprintf("%s (op=%s, address=%s)", msg, e.Op, e.Address.Short())
	case e.Op != "":
		return fmt.Sprintf("%s (op=%s)", msg, e.Op)
	}
	return msg
}

// Is reports whether target is an Error of the same category.
// A duplicate vote also matches ErrAlreadyExists.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Code == CodeDuplicateVote && t.Code == CodeAlreadyExists
}

// FieldTooLong builds a CodeFieldTooLong error for field.
func FieldTooLong(field string, got, budget int) *Error {
	return &Error{
		Code:    CodeFieldTooLong,
		Field:   field,
		Message: fmt.Sprintf("%s is %d bytes, budget is %d", field, got, budget),
	}
}

// Corrupt builds a CodeCorruptRecord error.
func Corrupt(format string, args ...any) *Error {
	return &Error{Code: CodeCorruptRecord, Message: fmt.Sprintf(format, args...)}
}

// WithOp attaches the operation and address to err. Errors of other types
// are wrapped with the operation name.
func WithOp(err error, op string, addr Address) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Op = op
		out.Address = addr
		return &out
	}
	return fmt.Errorf("%s %s: %w", op, addr.Short(), err)
}

// CodeOf extracts the error code through wrapping, or "" if err is not an
// Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
