package program

import (
	"fmt"

	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/record"
	"github.com/roach88/tallybook/internal/tally"
)

// Vote is the vote program.
type Vote struct {
	Policy authz.Policy
}

// Name implements Program.
func (p *Vote) Name() string { return VoteProgram }

// Execute implements Program.
func (p *Vote) Execute(f *host.Frame, in host.Instruction) error {
	addr, err := account(in, 0)
	if err != nil {
		return err
	}
	t := tally.New(p.Policy)
	switch in.Name {
	case InstrCreate:
		return ir.WithOp(p.create(t, f, addr, in.Args), "create_vote", addr)
	case InstrUpdate:
		return ir.WithOp(p.update(t, f, addr, in.Args), "update_vote", addr)
	case InstrCast:
		rcpt, err := account(in, 1)
		if err != nil {
			return err
		}
		return ir.WithOp(p.cast(t, f, addr, rcpt, in.Args), "cast_vote", addr)
	case InstrDelete:
		return ir.WithOp(p.delete(t, f, addr, in.Args), "delete_vote", addr)
	}
	return fmt.Errorf("%w: %s", ErrUnknownInstruction, in.Audience())
}

func (p *Vote) create(t *tally.Tally, f *host.Frame, addr ir.Address, args ir.Object) error {
	authority, err := signerArg(f, args, ArgAuthority)
	if err != nil {
		return err
	}
	name, err := textArg(args, ArgName)
	if err != nil {
		return err
	}
	payer, err := payerArg(args, authority)
	if err != nil {
		return err
	}
	if err := p.Policy.CheckPayer(authority, payer); err != nil {
		return err
	}
	if err := checkDerived(addr, ir.VoteAddress(p.Policy.OwnerFor(authority), name)); err != nil {
		return err
	}

	cur, err := occupant(f, record.VoteKind, addr)
	if err != nil {
		return err
	}
	rec, err := t.CreateVote(cur, authority, name, f.Now())
	if err != nil {
		return err
	}
	return f.Init(addr, payer, record.Encode(record.VoteKind, rec))
}

func (p *Vote) update(t *tally.Tally, f *host.Frame, addr ir.Address, args ir.Object) error {
	authority, err := signerArg(f, args, ArgAuthority)
	if err != nil {
		return err
	}
	var patch record.VotePatch
	if patch.Name, err = optionalTextArg(args, ArgName); err != nil {
		return err
	}

	cur, err := load(f, record.VoteKind, addr)
	if err != nil {
		return err
	}
	next, err := t.UpdateVote(cur, authority, patch, f.Now())
	if err != nil {
		return err
	}
	return f.Write(addr, record.Encode(record.VoteKind, next))
}

// cast claims the voter's receipt and bumps the count in one instruction.
// A duplicate leaves both accounts untouched.
func (p *Vote) cast(t *tally.Tally, f *host.Frame, addr, rcptAddr ir.Address, args ir.Object) error {
	voter, err := signerArg(f, args, ArgVoter)
	if err != nil {
		return err
	}
	payer, err := payerArg(args, voter)
	if err != nil {
		return err
	}
	if err := checkDerived(rcptAddr, ir.ReceiptAddress(addr, voter)); err != nil {
		return err
	}

	vote, err := load(f, record.VoteKind, addr)
	if err != nil {
		return err
	}
	rcpt, err := occupant(f, record.ReceiptKind, rcptAddr)
	if err != nil {
		return err
	}
	res, err := t.CastVote(vote, rcpt, voter, f.Now())
	if err != nil {
		return err
	}
	if err := f.Init(rcptAddr, payer, record.Encode(record.ReceiptKind, res.Receipt)); err != nil {
		return err
	}
	return f.Write(addr, record.Encode(record.VoteKind, res.Vote))
}

func (p *Vote) delete(t *tally.Tally, f *host.Frame, addr ir.Address, args ir.Object) error {
	authority, err := signerArg(f, args, ArgAuthority)
	if err != nil {
		return err
	}
	cur, err := load(f, record.VoteKind, addr)
	if err != nil {
		return err
	}
	refundTo, err := t.DeleteVote(cur, authority)
	if err != nil {
		return err
	}
	return f.Close(addr, refundTo)
}
