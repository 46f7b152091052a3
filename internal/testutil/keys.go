package testutil

import (
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/proof"
)

// Key returns the deterministic signing key for a named test party.
// The same name always yields the same key, so identities and addresses in
// golden files are stable.
func Key(name string) *proof.Key {
	return proof.FromPassphrase("test:" + name)
}

// Identity returns the identity of Key(name).
func Identity(name string) ir.Identity {
	return Key(name).Identity()
}
