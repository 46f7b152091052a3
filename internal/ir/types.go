package ir

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// Identity is an opaque public identifier for a party (an ed25519 public
// key). Identities are compared by equality only and never mutated.
type Identity [32]byte

// ParseIdentity decodes a 64-character hex identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if err := decodeHex32(s, id[:]); err != nil {
		return Identity{}, fmt.Errorf("parse identity: %w", err)
	}
	return id, nil
}

// MustParseIdentity is like ParseIdentity but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IdentityFromPublicKey wraps an ed25519 public key.
func IdentityFromPublicKey(pub ed25519.PublicKey) (Identity, error) {
	var id Identity
	if len(pub) != ed25519.PublicKeySize {
		return id, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	copy(id[:], pub)
	return id, nil
}

// PublicKey returns the identity as an ed25519 public key.
func (id Identity) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(id[:])
}

func (id Identity) String() string { return hex.EncodeToString(id[:]) }

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool { return id == Identity{} }

// Bytes returns a copy of the identity bytes, suitable as a derivation seed.
func (id Identity) Bytes() []byte { return append([]byte(nil), id[:]...) }

func (id Identity) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Address is a storage location in the host address space.
type Address [32]byte

// ParseAddress decodes a 64-character hex address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	if err := decodeHex32(s, addr[:]); err != nil {
		return Address{}, fmt.Errorf("parse address: %w", err)
	}
	return addr, nil
}

func (a Address) String() string { return hex.EncodeToString(a[:]) }

// Short returns an abbreviated form for logs.
func (a Address) Short() string { return hex.EncodeToString(a[:4]) }

// Bytes returns a copy of the address bytes, suitable as a derivation seed.
func (a Address) Bytes() []byte { return append([]byte(nil), a[:]...) }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// WalletAddress is the account holding an identity's spendable balance.
// Storage deposits are debited from and refunded to it.
func WalletAddress(id Identity) Address { return Address(id) }

// Timestamp is a host-clock reading in unix seconds.
type Timestamp int64

// LogEntry records one committed instruction in the transaction log.
type LogEntry struct {
	Seq         int64      `json:"seq"`
	TxID        string     `json:"tx_id"`
	Program     string     `json:"program"`
	Instruction string     `json:"instruction"`
	Accounts    []Address  `json:"accounts"`
	Signers     []Identity `json:"signers"`
	Args        Object     `json:"args"`
	Timestamp   Timestamp  `json:"timestamp"`
}

func decodeHex32(s string, dst []byte) error {
	if len(s) != 64 {
		return fmt.Errorf("expected 64 hex characters, got %d", len(s))
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return err
	}
	return nil
}
