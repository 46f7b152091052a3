// Package tally implements at-most-once voting over vote records.
//
// Every function is a pure transition over the vote snapshot and, for casts,
// the voter's receipt snapshot. Nothing here reads a clock or touches
// storage.
package tally

import (
	"math"

	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/receipt"
	"github.com/roach88/tallybook/internal/record"
)

// VoteRecord is a stored vote.
type VoteRecord = record.Record[record.Vote]

// ReceiptRecord is a stored vote receipt.
type ReceiptRecord = record.Record[record.Receipt]

// Tally applies vote transitions under an ownership policy.
type Tally struct {
	Policy authz.Policy
}

// New returns a Tally for policy.
func New(policy authz.Policy) *Tally {
	return &Tally{Policy: policy}
}

// CreateVote creates a vote named name. The owner is chosen by the policy:
// the caller in self-service mode, the admin in admin-issued mode.
func (t *Tally) CreateVote(cur *VoteRecord, caller ir.Identity, name string, now ir.Timestamp) (*VoteRecord, error) {
	owner, err := t.Policy.Creator(caller)
	if err != nil {
		return nil, err
	}
	return record.Create(record.VoteKind, cur, owner, record.Vote{Name: name}, now)
}

// UpdateVote patches the vote. The count is never touched.
func (t *Tally) UpdateVote(cur *VoteRecord, caller ir.Identity, patch record.VotePatch, now ir.Timestamp) (*VoteRecord, error) {
	return record.Update(record.VoteKind, cur, caller, patch, now)
}

// CastResult is the pair of snapshots a successful cast commits together.
type CastResult struct {
	Vote    *VoteRecord
	Receipt *ReceiptRecord
}

// CastVote counts one vote from voter.
//
// rcpt is the snapshot at the voter's receipt address. If it is occupied
// the cast fails with ir.ErrDuplicateVote and the caller commits nothing,
// so the count stays where it was.
func (t *Tally) CastVote(vote *VoteRecord, rcpt *ReceiptRecord, voter ir.Identity, now ir.Timestamp) (CastResult, error) {
	if vote == nil {
		return CastResult{}, ir.ErrNotFound
	}
	r, next, err := receipt.Guard(rcpt, voter, now, ir.ErrDuplicateVote, func() (*VoteRecord, error) {
		if vote.Fields.Count == math.MaxUint64 {
			return nil, ir.ErrOverflow
		}
		next := *vote
		next.Fields.Count++
		next.ModifiedAt = record.Bump(vote.ModifiedAt, now)
		return &next, nil
	})
	if err != nil {
		return CastResult{}, err
	}
	return CastResult{Vote: next, Receipt: r}, nil
}

// DeleteVote checks that caller may destroy the vote and returns the refund
// recipient. Receipts of the vote are left in place.
func (t *Tally) DeleteVote(cur *VoteRecord, caller ir.Identity) (ir.Identity, error) {
	return record.Delete(record.VoteKind, cur, caller)
}
