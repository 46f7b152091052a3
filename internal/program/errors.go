package program

import (
	"errors"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
)

var (
	ErrUnknownProgram     = errors.New("unknown program")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidArgs        = errors.New("invalid instruction arguments")
	ErrMissingAccount     = errors.New("missing account")

	// ErrAddressMismatch means a declared account is not the address
	// derived from the instruction's seeds.
	ErrAddressMismatch = errors.New("account does not match derived address")
)

// errNotSigned is returned when the acting identity did not sign the
// instruction. Without a proof the caller cannot act as anyone.
var errNotSigned = &ir.Error{
	Code:    ir.CodeUnauthorized,
	Message: "acting identity did not sign the instruction",
}

// ErrorCode extends host.ErrorCode with the instruction-decoding errors of
// this package.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownProgram):
		return "UNKNOWN_PROGRAM"
	case errors.Is(err, ErrUnknownInstruction):
		return "UNKNOWN_INSTRUCTION"
	case errors.Is(err, ErrInvalidArgs):
		return "INVALID_ARGS"
	case errors.Is(err, ErrMissingAccount):
		return "MISSING_ACCOUNT"
	case errors.Is(err, ErrAddressMismatch):
		return "ADDRESS_MISMATCH"
	}
	return host.ErrorCode(err)
}
