package program

import (
	"context"
	"fmt"

	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/record"
)

// Program and instruction names.
const (
	TodoProgram = "todo"
	VoteProgram = "vote"

	InstrCreate = "create"
	InstrUpdate = "update"
	InstrDelete = "delete"
	InstrCast   = "cast"
)

// Program executes the instructions addressed to it.
type Program interface {
	Name() string
	Execute(f *host.Frame, in host.Instruction) error
}

// Registry routes instructions to the todo and vote programs.
type Registry struct {
	rt   *host.Runtime
	Todo *Todo
	Vote *Vote
}

// NewRegistry creates the programs with their ownership policies.
func NewRegistry(rt *host.Runtime, todo, vote authz.Policy) *Registry {
	return &Registry{
		rt:   rt,
		Todo: &Todo{Policy: todo},
		Vote: &Vote{Policy: vote},
	}
}

// Runtime returns the host the registry submits to.
func (r *Registry) Runtime() *host.Runtime { return r.rt }

// Program looks up a program by name.
func (r *Registry) Program(name string) (Program, error) {
	switch name {
	case TodoProgram:
		return r.Todo, nil
	case VoteProgram:
		return r.Vote, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
}

// Submit runs in as one atomic instruction.
func (r *Registry) Submit(ctx context.Context, in host.Instruction) (ir.LogEntry, error) {
	p, err := r.Program(in.Program)
	if err != nil {
		return ir.LogEntry{}, err
	}
	return r.rt.Invoke(ctx, in, func(f *host.Frame) error {
		return p.Execute(f, in)
	})
}

// load decodes the record of kind k at addr, or returns nil when the
// address is empty.
func load[F, P any](f *host.Frame, k record.Kind[F, P], addr ir.Address) (*record.Record[F], error) {
	data, err := f.Data(addr)
	if err != nil || data == nil {
		return nil, err
	}
	return record.Decode(k, data)
}

// occupant is load for creates: an account of any other kind still
// occupies the address and yields a non-nil snapshot.
func occupant[F, P any](f *host.Frame, k record.Kind[F, P], addr ir.Address) (*record.Record[F], error) {
	acct, err := f.Load(addr)
	if err != nil || acct == nil {
		return nil, err
	}
	if !record.Is(k, acct.Data) {
		return &record.Record[F]{}, nil
	}
	return record.Decode(k, acct.Data)
}
