package client

import (
	"context"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/program"
	"github.com/roach88/tallybook/internal/record"
)

// VoteRecord is a decoded vote.
type VoteRecord = record.Record[record.Vote]

// CreateVote creates a vote and returns its address.
func (c *Client) CreateVote(ctx context.Context, name string) (ir.Address, error) {
	addr := c.VoteAddress(name)
	_, err := c.submit(ctx, host.Instruction{
		Program:  program.VoteProgram,
		Name:     program.InstrCreate,
		Accounts: []ir.Address{addr},
		Args: ir.Object{
			program.ArgAuthority: c.authority(),
			program.ArgName:      ir.Text(name),
		},
	}, true)
	if err != nil {
		return ir.Address{}, err
	}
	return addr, nil
}

// UpdateVote renames the vote at addr. A nil name only bumps modified_at.
func (c *Client) UpdateVote(ctx context.Context, addr ir.Address, name *string) error {
	args := ir.Object{program.ArgAuthority: c.authority()}
	if name != nil {
		args[program.ArgName] = ir.Text(*name)
	}
	_, err := c.submit(ctx, host.Instruction{
		Program:  program.VoteProgram,
		Name:     program.InstrUpdate,
		Accounts: []ir.Address{addr},
		Args:     args,
	}, false)
	return err
}

// CastVote counts the client's vote on addr. A second cast by the same
// identity fails with ir.ErrDuplicateVote.
func (c *Client) CastVote(ctx context.Context, addr ir.Address) error {
	_, err := c.submit(ctx, host.Instruction{
		Program:  program.VoteProgram,
		Name:     program.InstrCast,
		Accounts: []ir.Address{addr, c.ReceiptAddress(addr)},
		Args:     ir.Object{program.ArgVoter: c.authority()},
	}, true)
	return err
}

// DeleteVote destroys the vote at addr. Receipts stay behind.
func (c *Client) DeleteVote(ctx context.Context, addr ir.Address) error {
	_, err := c.submit(ctx, host.Instruction{
		Program:  program.VoteProgram,
		Name:     program.InstrDelete,
		Accounts: []ir.Address{addr},
		Args:     ir.Object{program.ArgAuthority: c.authority()},
	}, false)
	return err
}

// GetVote reads the vote at addr.
func (c *Client) GetVote(ctx context.Context, addr ir.Address) (*VoteRecord, error) {
	return get(ctx, c, record.VoteKind, addr, "get_vote")
}

// HasVoted reports whether voter holds a receipt for the vote at addr.
func (c *Client) HasVoted(ctx context.Context, addr ir.Address, voter ir.Identity) (bool, error) {
	acct, err := c.reg.Runtime().Account(ctx, ir.ReceiptAddress(addr, voter))
	if err != nil {
		return false, err
	}
	return acct != nil && record.Is(record.ReceiptKind, acct.Data), nil
}

// ListVotes returns every vote owned by owner, in address order.
func (c *Client) ListVotes(ctx context.Context, owner ir.Identity) ([]Listed[record.Vote], error) {
	return list(ctx, c, record.VoteKind, owner)
}
