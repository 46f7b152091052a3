package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tallybook/internal/ir"
)

// NewVoteCommand creates the vote command group.
func NewVoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Create votes and cast them",
		Long: `Votes are addressed by creator and name and count one cast per identity.
A cast leaves a receipt owned by the voter.

Examples:
  tallybook vote create Banana
  tallybook vote cast Banana --owner <creator>
  tallybook vote show Banana --owner <creator>`,
	}

	cmd.AddCommand(newVoteCreateCommand(rootOpts))
	cmd.AddCommand(newVoteUpdateCommand(rootOpts))
	cmd.AddCommand(newVoteCastCommand(rootOpts))
	cmd.AddCommand(newVoteDeleteCommand(rootOpts))
	cmd.AddCommand(newVoteShowCommand(rootOpts))
	cmd.AddCommand(newVoteListCommand(rootOpts))
	return cmd
}

// voteTarget opens a session, reads the signing key and resolves the vote
// called name.
func voteTarget(rootOpts *RootOptions, cmd *cobra.Command, owner, payer, name string) (*session, *voteCall, error) {
	s, err := openSession(rootOpts, cmd)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.client(rootOpts, payer)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	id, err := recordOwner(owner, s.reg.Vote.Policy, c.Identity())
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, &voteCall{client: c, addr: ir.VoteAddress(id, name)}, nil
}

func newVoteCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var payer string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a vote",
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
			addr, err := c.CreateVote(ctx, args[0])
			if err != nil {
				return out.Fail("create vote", err)
			}
			rec, err := c.GetVote(ctx, addr)
			if err != nil {
				return out.Fail("get vote", err)
			}
			return out.Success(newVoteView(addr, rec))
		},
	}
	cmd.Flags().StringVar(&payer, "payer", "", "key file of a separate deposit payer")
	return cmd
}

func newVoteUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var owner, name string
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Rename a vote",
		Long: `Rename a vote with --name. Without --name only the modification time
moves. The count cannot be changed by an update.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rename *string
			if cmd.Flags().Changed("name") {
				rename = &name
			}
			s, call, err := voteTarget(rootOpts, cmd, owner, "", args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			out := rootOpts.formatter(cmd)
			ctx := cmd.Context()
			if err := call.client.UpdateVote(ctx, call.addr, rename); err != nil {
				return out.Fail("update vote", err)
			}
			return call.show(ctx, out, false)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "creator identity of the vote")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	return cmd
}

func newVoteCastCommand(rootOpts *RootOptions) *cobra.Command {
	var owner, payer string
	cmd := &cobra.Command{
		Use:   "cast <name>",
		Short: "Cast the signing key's vote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, call, err := voteTarget(rootOpts, cmd, owner, payer, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			out := rootOpts.formatter(cmd)
			ctx := cmd.Context()
			if err := call.client.CastVote(ctx, call.addr); err != nil {
				return out.Fail("cast vote", err)
			}
			return call.show(ctx, out, true)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "creator identity of the vote")
	cmd.Flags().StringVar(&payer, "payer", "", "key file of a separate receipt payer")
	return cmd
}

func newVoteDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a vote and refund its deposit to the creator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, call, err := voteTarget(rootOpts, cmd, owner, "", args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			out := rootOpts.formatter(cmd)
			if err := call.client.DeleteVote(cmd.Context(), call.addr); err != nil {
				return out.Fail("delete vote", err)
			}
			return out.Success(addressView{Address: call.addr})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "creator identity of the vote")
	return cmd
}

func newVoteShowCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a vote and whether the signing key has voted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, call, err := voteTarget(rootOpts, cmd, owner, "", args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			return call.show(cmd.Context(), rootOpts.formatter(cmd), true)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "creator identity of the vote")
	return cmd
}

func newVoteListCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the votes of a creator",
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
			id, err := recordOwner(owner, s.reg.Vote.Policy, c.Identity())
			if err != nil {
				return err
			}

			out := rootOpts.formatter(cmd)
			items, err := c.ListVotes(cmd.Context(), id)
			if err != nil {
				return out.Fail("list votes", err)
			}
			return out.Success(newVoteListView(id, items))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "creator identity (default: the signing key's owner)")
	return cmd
}
