package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for derived values.
// Version suffix enables future algorithm migration.
const (
	DomainAddress       = "tallybook/address/v1"
	DomainDiscriminator = "tallybook/record/v1"
	DomainInstruction   = "tallybook/instruction/v1"
)

// Namespace separates address families so that identical seeds under
// different record kinds never collide.
type Namespace string

const (
	NamespaceTodo    Namespace = "todo"
	NamespaceVote    Namespace = "vote"
	NamespaceReceipt Namespace = "receipt"
	NamespaceProof   Namespace = "proof"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + parts...)
// Callers are responsible for making part boundaries unambiguous.
func hashWithDomain(domain string, parts ...[]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Derive maps a namespace and ordered seeds to a storage address.
//
// Derive is pure and public: clients use it to locate records without an
// index. Each seed is written with a 4-byte big-endian length prefix, so
// ("ab", "c") and ("a", "bc") hash differently, as do reordered seeds.
func Derive(ns Namespace, seeds ...[]byte) Address {
	parts := make([][]byte, 0, 2+2*len(seeds))
	parts = append(parts, []byte(ns), []byte{0x00})
	for _, seed := range seeds {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(seed)))
		parts = append(parts, n[:], seed)
	}
	return Address(hashWithDomain(DomainAddress, parts...))
}

// TodoAddress is the address of the todo created by owner with title.
// Discovery must use the title given at creation, not a later update.
func TodoAddress(owner Identity, title string) Address {
	return Derive(NamespaceTodo, owner[:], []byte(title))
}

// VoteAddress is the address of the vote created by creator with name.
func VoteAddress(creator Identity, name string) Address {
	return Derive(NamespaceVote, creator[:], []byte(name))
}

// ReceiptAddress is the address whose occupancy records that voter has
// voted on the vote at voteAddr.
func ReceiptAddress(voteAddr Address, voter Identity) Address {
	return Derive(NamespaceReceipt, voteAddr[:], voter[:])
}

// ProofAddress is the address whose occupancy records that the proof with
// token ID jti, signed by signer, has been spent.
func ProofAddress(signer Identity, jti string) Address {
	return Derive(NamespaceProof, signer[:], []byte(jti))
}

// Discriminator returns the 8-byte tag that prefixes every stored record of
// the named kind.
func Discriminator(kind string) [8]byte {
	sum := hashWithDomain(DomainDiscriminator, []byte(kind))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// InstructionDigest binds a signed proof to one exact instruction.
// The digest covers the canonical JSON of the program, instruction name,
// declared accounts and arguments.
func InstructionDigest(program, name string, accounts []Address, args Object) (string, error) {
	accts := make([]any, len(accounts))
	for i, a := range accounts {
		accts[i] = a
	}
	if args == nil {
		args = Object{}
	}
	data, err := MarshalCanonical(map[string]any{
		"program":     program,
		"instruction": name,
		"accounts":    accts,
		"args":        args,
	})
	if err != nil {
		return "", fmt.Errorf("instruction digest: %w", err)
	}
	sum := hashWithDomain(DomainInstruction, data)
	return hex.EncodeToString(sum[:]), nil
}
