package client

import (
	"context"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/program"
	"github.com/roach88/tallybook/internal/record"
)

// TodoRecord is a decoded todo.
type TodoRecord = record.Record[record.Todo]

// TodoUpdate is a sparse todo patch. Nil fields are left unchanged.
type TodoUpdate struct {
	Title       *string
	Description *string
	Active      *bool
}

// CreateTodo creates a todo and returns its address.
func (c *Client) CreateTodo(ctx context.Context, title, description string) (ir.Address, error) {
	addr := c.TodoAddress(title)
	_, err := c.submit(ctx, host.Instruction{
		Program:  program.TodoProgram,
		Name:     program.InstrCreate,
		Accounts: []ir.Address{addr},
		Args: ir.Object{
			program.ArgAuthority:   c.authority(),
			program.ArgTitle:       ir.Text(title),
			program.ArgDescription: ir.Text(description),
		},
	}, true)
	if err != nil {
		return ir.Address{}, err
	}
	return addr, nil
}

// UpdateTodo applies a sparse patch to the todo at addr.
func (c *Client) UpdateTodo(ctx context.Context, addr ir.Address, u TodoUpdate) error {
	args := ir.Object{program.ArgAuthority: c.authority()}
	if u.Title != nil {
		args[program.ArgTitle] = ir.Text(*u.Title)
	}
	if u.Description != nil {
		args[program.ArgDescription] = ir.Text(*u.Description)
	}
	if u.Active != nil {
		args[program.ArgActive] = ir.Bool(*u.Active)
	}
	_, err := c.submit(ctx, host.Instruction{
		Program:  program.TodoProgram,
		Name:     program.InstrUpdate,
		Accounts: []ir.Address{addr},
		Args:     args,
	}, false)
	return err
}

// DeleteTodo destroys the todo at addr. The deposit goes back to its owner.
func (c *Client) DeleteTodo(ctx context.Context, addr ir.Address) error {
	_, err := c.submit(ctx, host.Instruction{
		Program:  program.TodoProgram,
		Name:     program.InstrDelete,
		Accounts: []ir.Address{addr},
		Args:     ir.Object{program.ArgAuthority: c.authority()},
	}, false)
	return err
}

// GetTodo reads the todo at addr.
func (c *Client) GetTodo(ctx context.Context, addr ir.Address) (*TodoRecord, error) {
	return get(ctx, c, record.TodoKind, addr, "get_todo")
}

// ListTodos returns every todo owned by owner, in address order.
func (c *Client) ListTodos(ctx context.Context, owner ir.Identity) ([]Listed[record.Todo], error) {
	return list(ctx, c, record.TodoKind, owner)
}
