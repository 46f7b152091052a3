package record

import (
	"bytes"

	"github.com/roach88/tallybook/internal/ir"
)

// Kind describes one record kind: F is its field set, P its patch.
//
// The interface is sealed; kinds are declared in this package so that the
// storage layout stays under one roof.
type Kind[F, P any] interface {
	// Name is the kind name used for the discriminator and in logs.
	Name() string

	// Init applies creation defaults (active flag, zero counter) to the
	// caller-supplied fields.
	Init(fields F) F

	// ValidateFields checks every bounded field of a full field set.
	ValidateFields(fields F) error

	// ValidatePatch checks the bounded fields a patch actually supplies.
	ValidatePatch(patch P) error

	// ApplyPatch returns fields with the supplied patch fields replaced.
	// Unset patch fields leave the corresponding field unchanged.
	ApplyPatch(fields F, patch P) F

	fieldsSize() int
	encodeFields(e *encoder, fields F)
	decodeFields(d *decoder) F
}

// Record is a stored record of field set F.
type Record[F any] struct {
	Owner      ir.Identity
	Fields     F
	CreatedAt  ir.Timestamp
	ModifiedAt ir.Timestamp
}

// Space is the exact encoded size of records of kind k.
func Space[F, P any](k Kind[F, P]) int {
	return headerSize + k.fieldsSize() + trailerSize
}

// Discriminator is the tag prefixing every encoded record of kind k.
func Discriminator[F, P any](k Kind[F, P]) [8]byte {
	return ir.Discriminator(k.Name())
}

// Encode lays rec out in its fixed-capacity form. Fields must already be
// within budget.
func Encode[F, P any](k Kind[F, P], rec *Record[F]) []byte {
	e := newEncoder(Space(k))
	disc := Discriminator(k)
	e.raw(disc[:])
	e.raw(rec.Owner[:])
	k.encodeFields(e, rec.Fields)
	e.i64(int64(rec.CreatedAt))
	e.i64(int64(rec.ModifiedAt))
	return e.buf
}

// Decode parses data as a record of kind k.
func Decode[F, P any](k Kind[F, P], data []byte) (*Record[F], error) {
	if len(data) != Space(k) {
		return nil, ir.Corrupt("%s record is %d bytes, want %d", k.Name(), len(data), Space(k))
	}
	disc := Discriminator(k)
	if !bytes.Equal(data[:DiscriminatorSize], disc[:]) {
		return nil, ir.Corrupt("account does not hold a %s record", k.Name())
	}

	d := &decoder{buf: data, off: DiscriminatorSize}
	rec := &Record[F]{}
	copy(rec.Owner[:], d.take(32))
	rec.Fields = k.decodeFields(d)
	rec.CreatedAt = ir.Timestamp(d.i64())
	rec.ModifiedAt = ir.Timestamp(d.i64())
	if d.err != nil {
		return nil, d.err
	}
	return rec, nil
}

// Is reports whether data carries the discriminator of kind k.
func Is[F, P any](k Kind[F, P], data []byte) bool {
	disc := Discriminator(k)
	return len(data) >= DiscriminatorSize && bytes.Equal(data[:DiscriminatorSize], disc[:])
}

// OwnerOf reads the owner of an encoded record without decoding its fields.
func OwnerOf(data []byte) (ir.Identity, bool) {
	var id ir.Identity
	if len(data) < headerSize {
		return id, false
	}
	copy(id[:], data[DiscriminatorSize:headerSize])
	return id, true
}
