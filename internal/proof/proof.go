// Package proof issues and verifies signed proofs of identity control.
//
// A proof is a compact JWT signed with the identity's ed25519 key (EdDSA).
// The subject is the hex identity, the audience is the instruction it
// authorizes, and the dig claim is the instruction digest, so a proof cannot
// be lifted onto a different instruction or different arguments. Every
// proof carries a random token ID (jti) that the host consumes, so a proof
// authorizes at most one committed instruction.
package proof

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/roach88/tallybook/internal/ir"
)

// DefaultTTL bounds how long an issued proof stays valid.
const DefaultTTL = 5 * time.Minute

// ErrInvalid is returned for any proof that fails verification.
var ErrInvalid = errors.New("invalid proof")

// Key is an ed25519 signing key.
type Key struct {
	priv ed25519.PrivateKey
}

// Generate creates a new random key.
func Generate(r io.Reader) (*Key, error) {
	if r == nil {
		r = rand.Reader
	}
	_, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Key{priv: priv}, nil
}

// FromSeed builds a key from a 32-byte seed.
func FromSeed(seed []byte) (*Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Key{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// FromPassphrase derives a key deterministically from a passphrase.
// Intended for development identities and tests only.
func FromPassphrase(phrase string) *Key {
	seed := sha256.Sum256([]byte("tallybook/dev-key/v1\x00" + phrase))
	return &Key{priv: ed25519.NewKeyFromSeed(seed[:])}
}

// Identity returns the public identity of the key.
func (k *Key) Identity() ir.Identity {
	var id ir.Identity
	copy(id[:], k.priv.Public().(ed25519.PublicKey))
	return id
}

// Seed returns the 32-byte private seed.
func (k *Key) Seed() []byte { return k.priv.Seed() }

// Claims are the JWT claims of a proof.
type Claims struct {
	jwt.RegisteredClaims
	Digest string `json:"dig"`
}

// Sign issues a proof that the key holder authorizes the instruction with
// the given audience and digest.
func (k *Key) Sign(audience, digest string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   k.Identity().String(),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(DefaultTTL)),
		},
		Digest: digest,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(k.priv)
	if err != nil {
		return "", fmt.Errorf("sign proof: %w", err)
	}
	return signed, nil
}

// Verified is a proof that passed verification.
type Verified struct {
	Identity ir.Identity
	// ID is the token ID. It is only unique per signer.
	ID      string
	Expires time.Time
}

// Verifier checks proofs and returns the identities they prove.
type Verifier struct{}

// NewVerifier returns a proof verifier.
func NewVerifier() *Verifier { return &Verifier{} }

// Verify validates token for the given audience and digest. The signing key
// is the subject itself, so no key registry is consulted. Verify is
// stateless: refusing a token ID that was already used is up to the caller.
func (v *Verifier) Verify(token, audience, digest string) (Verified, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		c, ok := t.Claims.(*Claims)
		if !ok {
			return nil, fmt.Errorf("unexpected claims type %T", t.Claims)
		}
		id, err := ir.ParseIdentity(c.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject: %w", err)
		}
		return id.PublicKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if err != nil {
		return Verified{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !parsed.Valid {
		return Verified{}, ErrInvalid
	}
	if !claims.VerifyAudience(audience, true) {
		return Verified{}, fmt.Errorf("%w: audience is not %q", ErrInvalid, audience)
	}
	if claims.Digest != digest {
		return Verified{}, fmt.Errorf("%w: signed for a different instruction", ErrInvalid)
	}
	if claims.ID == "" {
		return Verified{}, fmt.Errorf("%w: missing token id", ErrInvalid)
	}
	if claims.ExpiresAt == nil {
		return Verified{}, fmt.Errorf("%w: missing expiry", ErrInvalid)
	}
	id, err := ir.ParseIdentity(claims.Subject)
	if err != nil {
		return Verified{}, fmt.Errorf("%w: subject: %v", ErrInvalid, err)
	}
	return Verified{Identity: id, ID: claims.ID, Expires: claims.ExpiresAt.Time}, nil
}

// WriteKeyFile stores the key seed as hex with owner-only permissions.
func (k *Key) WriteKeyFile(path string) error {
	data := []byte(hex.EncodeToString(k.Seed()) + "\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// ReadKeyFile loads a key written by WriteKeyFile.
func ReadKeyFile(path string) (*Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key file %s: expected %d hex characters", path, 2*ed25519.SeedSize)
	}
	return FromSeed(seed)
}
