package host

import "errors"

// Runtime errors. Record-level failures (not found, unauthorized, ...) are
// ir.Error values produced by the programs; these cover the host itself.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidProof      = errors.New("invalid proof")
	ErrMissingSigner     = errors.New("missing required signer")
	ErrUndeclaredAccount = errors.New("account not declared on instruction")
	ErrAccountInUse      = errors.New("account already in use")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountSize       = errors.New("account data size mismatch")
	ErrAirdropLimit      = errors.New("airdrop exceeds limit")
)
