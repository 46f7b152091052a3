package program

import (
	"fmt"

	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/record"
)

// Todo is the todo program.
type Todo struct {
	Policy authz.Policy
}

// Name implements Program.
func (p *Todo) Name() string { return TodoProgram }

// Execute implements Program.
func (p *Todo) Execute(f *host.Frame, in host.Instruction) error {
	addr, err := account(in, 0)
	if err != nil {
		return err
	}
	switch in.Name {
	case InstrCreate:
		return ir.WithOp(p.create(f, addr, in.Args), "create_todo", addr)
	case InstrUpdate:
		return ir.WithOp(p.update(f, addr, in.Args), "update_todo", addr)
	case InstrDelete:
		return ir.WithOp(p.delete(f, addr, in.Args), "delete_todo", addr)
	}
	return fmt.Errorf("%w: %s", ErrUnknownInstruction, in.Audience())
}

func (p *Todo) create(f *host.Frame, addr ir.Address, args ir.Object) error {
	authority, err := signerArg(f, args, ArgAuthority)
	if err != nil {
		return err
	}
	title, err := textArg(args, ArgTitle)
	if err != nil {
		return err
	}
	description, err := textArg(args, ArgDescription)
	if err != nil {
		return err
	}
	payer, err := payerArg(args, authority)
	if err != nil {
		return err
	}

	owner, err := p.Policy.Creator(authority)
	if err != nil {
		return err
	}
	if err := p.Policy.CheckPayer(authority, payer); err != nil {
		return err
	}
	if err := checkDerived(addr, ir.TodoAddress(owner, title)); err != nil {
		return err
	}

	cur, err := occupant(f, record.TodoKind, addr)
	if err != nil {
		return err
	}
	rec, err := record.Create(record.TodoKind, cur, owner, record.Todo{
		Title:       title,
		Description: description,
	}, f.Now())
	if err != nil {
		return err
	}
	return f.Init(addr, payer, record.Encode(record.TodoKind, rec))
}

func (p *Todo) update(f *host.Frame, addr ir.Address, args ir.Object) error {
	authority, err := signerArg(f, args, ArgAuthority)
	if err != nil {
		return err
	}
	var patch record.TodoPatch
	if patch.Title, err = optionalTextArg(args, ArgTitle); err != nil {
		return err
	}
	if patch.Description, err = optionalTextArg(args, ArgDescription); err != nil {
		return err
	}
	if patch.Active, err = optionalBoolArg(args, ArgActive); err != nil {
		return err
	}

	cur, err := load(f, record.TodoKind, addr)
	if err != nil {
		return err
	}
	next, err := record.Update(record.TodoKind, cur, authority, patch, f.Now())
	if err != nil {
		return err
	}
	return f.Write(addr, record.Encode(record.TodoKind, next))
}

func (p *Todo) delete(f *host.Frame, addr ir.Address, args ir.Object) error {
	authority, err := signerArg(f, args, ArgAuthority)
	if err != nil {
		return err
	}
	cur, err := load(f, record.TodoKind, addr)
	if err != nil {
		return err
	}
	refundTo, err := record.Delete(record.TodoKind, cur, authority)
	if err != nil {
		return err
	}
	return f.Close(addr, refundTo)
}
