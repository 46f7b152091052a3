package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tallybook/internal/ir"
)

// NewAirdropCommand creates the airdrop command.
func NewAirdropCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop <lamports>",
		Short: "Fund the key's wallet from the development faucet",
		Long: `Fund the key's wallet from the development faucet.

Storage deposits for new records are debited from the wallet and refunded
to the owner when the record is deleted.

Example:
  tallybook airdrop 1000000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid lamports", err)
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

			out := rootOpts.formatter(cmd)
			ctx := cmd.Context()
			if err := c.Airdrop(ctx, lamports); err != nil {
				return out.Fail("airdrop", err)
			}
			balance, err := c.Balance(ctx)
			if err != nil {
				return out.Fail("balance", err)
			}
			return out.Success(balanceView{Identity: c.Identity(), Lamports: balance})
		},
	}
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [identity]",
		Short: "Show the lamports held by a wallet",
		Long: `Show the lamports held by a wallet. Without an argument the identity of
the signing key is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id ir.Identity
			if len(args) == 1 {
				var err error
				if id, err = parseIdentityArg("identity", args[0]); err != nil {
					return err
				}
			} else {
				key, err := readKey(rootOpts.KeyPath)
				if err != nil {
					return err
				}
				id = key.Identity()
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := rootOpts.formatter(cmd)
			balance, err := s.rt.Balance(cmd.Context(), id)
			if err != nil {
				return out.Fail("balance", err)
			}
			return out.Success(balanceView{Identity: id, Lamports: balance})
		},
	}
}
