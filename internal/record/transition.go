package record

import (
	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/ir"
)

// Create returns the record that owner creates with fields at time now.
//
// cur is the snapshot currently at the target address; any non-nil snapshot
// is a collision and Create fails with ErrAlreadyExists. Creation ownership
// (who may create, who owns) is decided by the caller through authz.Policy
// before Create runs.
func Create[F, P any](k Kind[F, P], cur *Record[F], owner ir.Identity, fields F, now ir.Timestamp) (*Record[F], error) {
	if cur != nil {
		return nil, ir.ErrAlreadyExists
	}
	if err := k.ValidateFields(fields); err != nil {
		return nil, err
	}
	return &Record[F]{
		Owner:      owner,
		Fields:     k.Init(fields),
		CreatedAt:  now,
		ModifiedAt: now,
	}, nil
}

// Update returns the record after caller applies patch at time now.
//
// Only the fields present in patch change. modified_at moves to now even
// when no field value changes, and never moves backwards. cur is not
// modified.
func Update[F, P any](k Kind[F, P], cur *Record[F], caller ir.Identity, patch P, now ir.Timestamp) (*Record[F], error) {
	if cur == nil {
		return nil, ir.ErrNotFound
	}
	if err := authz.Authorize(caller, cur.Owner); err != nil {
		return nil, err
	}
	if err := k.ValidatePatch(patch); err != nil {
		return nil, err
	}

	next := *cur
	next.Fields = k.ApplyPatch(cur.Fields, patch)
	next.ModifiedAt = Bump(cur.ModifiedAt, now)
	return &next, nil
}

// Delete checks that caller may destroy cur and returns the identity its
// storage deposit is refunded to.
func Delete[F, P any](k Kind[F, P], cur *Record[F], caller ir.Identity) (ir.Identity, error) {
	if cur == nil {
		return ir.Identity{}, ir.ErrNotFound
	}
	if err := authz.Authorize(caller, cur.Owner); err != nil {
		return ir.Identity{}, err
	}
	return cur.Owner, nil
}

// Bump returns the next modified_at for a record last modified at prev.
func Bump(prev, now ir.Timestamp) ir.Timestamp {
	if now < prev {
		return prev
	}
	return now
}
