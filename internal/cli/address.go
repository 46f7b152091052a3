package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tallybook/internal/ir"
)

// NewAddressCommand creates the address command. Derivation needs no
// database or key.
func NewAddressCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive record addresses",
		Long: `Derive the address of a record from its seeds.

Examples:
  tallybook address todo <owner> "Finish project"
  tallybook address vote <creator> Banana
  tallybook address receipt <vote-address> <voter>`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "todo <owner> <title>",
		Short: "Address of a todo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseIdentityArg("owner", args[0])
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(addressView{Address: ir.TodoAddress(owner, args[1])})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "vote <creator> <name>",
		Short: "Address of a vote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			creator, err := parseIdentityArg("creator", args[0])
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(addressView{Address: ir.VoteAddress(creator, args[1])})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "receipt <vote-address> <voter>",
		Short: "Address of a vote receipt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vote, err := parseAddressArg("vote address", args[0])
			if err != nil {
				return err
			}
			voter, err := parseIdentityArg("voter", args[1])
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(addressView{Address: ir.ReceiptAddress(vote, voter)})
		},
	})

	return cmd
}
