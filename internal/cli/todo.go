package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/client"
	"github.com/roach88/tallybook/internal/ir"
)

// recordOwner resolves the owner seed of a record address: the --owner
// flag when given, else the owner the policy assigns to the signing key.
func recordOwner(flag string, p authz.Policy, me ir.Identity) (ir.Identity, error) {
	if flag != "" {
		return parseIdentityArg("owner", flag)
	}
	return p.OwnerFor(me), nil
}

// NewTodoCommand creates the todo command group.
func NewTodoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Create, update and list todos",
		Long: `Todos are addressed by owner and title. Commands locate a todo by its
title and the --owner identity, which defaults to the owner the todo policy
assigns to the signing key.

Examples:
  tallybook todo create "Finish project" --description "by friday"
  tallybook todo update "Finish project" --active=false
  tallybook todo list`,
	}

	cmd.AddCommand(newTodoCreateCommand(rootOpts))
	cmd.AddCommand(newTodoUpdateCommand(rootOpts))
	cmd.AddCommand(newTodoDeleteCommand(rootOpts))
	cmd.AddCommand(newTodoShowCommand(rootOpts))
	cmd.AddCommand(newTodoListCommand(rootOpts))
	return cmd
}

func newTodoCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var description, payer string
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.client(rootOpts, payer)
			if err != nil {
				return err
			}

			out := rootOpts.formatter(cmd)
			ctx := cmd.Context()
			addr, err := c.CreateTodo(ctx, args[0], description)
			if err != nil {
				return out.Fail("create todo", err)
			}
			rec, err := c.GetTodo(ctx, addr)
			if err != nil {
				return out.Fail("get todo", err)
			}
			return out.Success(newTodoView(addr, rec))
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "todo description")
	cmd.Flags().StringVar(&payer, "payer", "", "key file of a separate deposit payer")
	return cmd
}

func newTodoUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var owner, title, description string
	var active bool
	cmd := &cobra.Command{
		Use:   "update <title>",
		Short: "Update fields of a todo",
		Long: `Update fields of a todo. Only the flags given are changed; the rest of
the record is left as it is. Renaming with --title keeps the address, which
stays derived from the original title.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u client.TodoUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("active") {
				u.Active = &active
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.client(rootOpts, "")
			if err != nil {
				return err
			}
			id, err := recordOwner(owner, s.reg.Todo.Policy, c.Identity())
			if err != nil {
				return err
			}
			addr := ir.TodoAddress(id, args[0])

			out := rootOpts.formatter(cmd)
			ctx := cmd.Context()
			if err := c.UpdateTodo(ctx, addr, u); err != nil {
				return out.Fail("update todo", err)
			}
			rec, err := c.GetTodo(ctx, addr)
			if err != nil {
				return out.Fail("get todo", err)
			}
			return out.Success(newTodoView(addr, rec))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner identity of the todo")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().BoolVar(&active, "active", true, "whether the todo is still open")
	return cmd
}

func newTodoDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "delete <title>",
		Short: "Delete a todo and refund its deposit to the owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.client(rootOpts, "")
			if err != nil {
				return err
			}
			id, err := recordOwner(owner, s.reg.Todo.Policy, c.Identity())
			if err != nil {
				return err
			}
			addr := ir.TodoAddress(id, args[0])

			out := rootOpts.formatter(cmd)
			if err := c.DeleteTodo(cmd.Context(), addr); err != nil {
				return out.Fail("delete todo", err)
			}
			return out.Success(addressView{Address: addr})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner identity of the todo")
	return cmd
}

func newTodoShowCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "show <title>",
		Short: "Show a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.client(rootOpts, "")
			if err != nil {
				return err
			}
			id, err := recordOwner(owner, s.reg.Todo.Policy, c.Identity())
			if err != nil {
				return err
			}
			addr := ir.TodoAddress(id, args[0])

			out := rootOpts.formatter(cmd)
			rec, err := c.GetTodo(cmd.Context(), addr)
			if err != nil {
				return out.Fail("get todo", err)
			}
			return out.Success(newTodoView(addr, rec))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner identity of the todo")
	return cmd
}

func newTodoListCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the todos of an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.client(rootOpts, "")
			if err != nil {
				return err
			}
			id, err := recordOwner(owner, s.reg.Todo.Policy, c.Identity())
			if err != nil {
				return err
			}

			out := rootOpts.formatter(cmd)
			items, err := c.ListTodos(cmd.Context(), id)
			if err != nil {
				return out.Fail("list todos", err)
			}
			return out.Success(newTodoListView(id, items))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner identity (default: the signing key's owner)")
	return cmd
}
