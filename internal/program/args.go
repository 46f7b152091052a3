package program

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
)

// Argument keys.
const (
	ArgAuthority   = "authority"
	ArgPayer       = "payer"
	ArgVoter       = "voter"
	ArgTitle       = "title"
	ArgDescription = "description"
	ArgActive      = "active"
	ArgName        = "name"
)

func textArg(args ir.Object, key string) (string, error) {
	s, err := optionalTextArg(args, key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidArgs, key)
	}
	return *s, nil
}

// optionalTextArg also requires valid NFC text: the instruction digest
// normalizes strings, so any other spelling would be covered by a proof
// signed for a different byte payload.
func optionalTextArg(args ir.Object, key string) (*string, error) {
	v, ok := args[key]
	if !ok {
		return nil, nil
	}
	t, ok := v.(ir.Text)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be text, got %T", ErrInvalidArgs, key, v)
	}
	s := string(t)
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidArgs, key)
	}
	if !norm.NFC.IsNormalString(s) {
		return nil, fmt.Errorf("%w: %q is not NFC-normalized", ErrInvalidArgs, key)
	}
	return &s, nil
}

func optionalBoolArg(args ir.Object, key string) (*bool, error) {
	v, ok := args[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.(ir.Bool)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a boolean, got %T", ErrInvalidArgs, key, v)
	}
	out := bool(b)
	return &out, nil
}

func identityArg(args ir.Object, key string) (ir.Identity, error) {
	s, err := textArg(args, key)
	if err != nil {
		return ir.Identity{}, err
	}
	id, err := ir.ParseIdentity(s)
	if err != nil {
		return ir.Identity{}, fmt.Errorf("%w: %q: %v", ErrInvalidArgs, key, err)
	}
	return id, nil
}

// signerArg reads the identity at key and requires that it signed.
func signerArg(f *host.Frame, args ir.Object, key string) (ir.Identity, error) {
	id, err := identityArg(args, key)
	if err != nil {
		return ir.Identity{}, err
	}
	if !f.IsSigner(id) {
		return ir.Identity{}, errNotSigned
	}
	return id, nil
}

// payerArg reads the optional payer, defaulting to def.
func payerArg(args ir.Object, def ir.Identity) (ir.Identity, error) {
	if _, ok := args[ArgPayer]; !ok {
		return def, nil
	}
	return identityArg(args, ArgPayer)
}

func account(in host.Instruction, i int) (ir.Address, error) {
	if i >= len(in.Accounts) {
		return ir.Address{}, fmt.Errorf("%w: %s needs account #%d", ErrMissingAccount, in.Audience(), i)
	}
	return in.Accounts[i], nil
}

func checkDerived(got, want ir.Address) error {
	if got != want {
		return fmt.Errorf("%w: got %s, want %s", ErrAddressMismatch, got.Short(), want.Short())
	}
	return nil
}
