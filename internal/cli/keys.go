package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tallybook/internal/proof"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Passphrase string
	Force      bool
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create a signing key",
		Long: `Create an ed25519 signing key and write it to the --key file.

With --passphrase the key is derived from the passphrase, so the same
passphrase always yields the same identity. Use this for development only.

Examples:
  tallybook keygen
  tallybook keygen --key alice.key --passphrase alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Passphrase, "passphrase", "", "derive the key from a passphrase")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing key file")

	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	if !opts.Force {
		if _, err := os.Stat(opts.KeyPath); err == nil {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("key file %s already exists (use --force to overwrite)", opts.KeyPath))
		}
	}

	var key *proof.Key
	if opts.Passphrase != "" {
		key = proof.FromPassphrase(opts.Passphrase)
	} else {
		var err error
		if key, err = proof.Generate(nil); err != nil {
			return WrapExitError(ExitFailure, "keygen", err)
		}
	}
	if err := key.WriteKeyFile(opts.KeyPath); err != nil {
		return WrapExitError(ExitCommandError, "keygen", err)
	}

	return opts.formatter(cmd).Success(identityView{
		Identity: key.Identity(),
		KeyFile:  opts.KeyPath,
	})
}

// NewIdentityCommand creates the identity command.
func NewIdentityCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Print the identity of the signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readKey(rootOpts.KeyPath)
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(identityView{
				Identity: key.Identity(),
				KeyFile:  rootOpts.KeyPath,
			})
		},
	}
}
