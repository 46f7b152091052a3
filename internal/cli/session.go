package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tallybook/internal/client"
	"github.com/roach88/tallybook/internal/config"
	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/program"
	"github.com/roach88/tallybook/internal/proof"
)

// session is an open address space with the programs registered on it.
type session struct {
	cfg    *config.Config
	space  host.AddressSpace
	rt     *host.Runtime
	reg    *program.Registry
	logger *slog.Logger
}

func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	todo, err := cfg.TodoPolicy()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "todo policy", err)
	}
	vote, err := cfg.VotePolicy()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "vote policy", err)
	}

	logger := opts.newLogger(cmd, cfg)
	space, err := cfg.OpenSpace(logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	logger.Debug("database opened",
		"backend", cfg.Database.Backend,
		"path", cfg.Database.Path)

	rt := host.New(space, append(cfg.HostOptions(), host.WithLogger(logger))...)
	return &session{
		cfg:    cfg,
		space:  space,
		rt:     rt,
		reg:    program.NewRegistry(rt, todo, vote),
		logger: logger,
	}, nil
}

func (s *session) Close() error {
	return s.space.Close()
}

// client returns a client acting as the key at opts.KeyPath. payerPath,
// when set, names a key file funding deposits.
func (s *session) client(opts *RootOptions, payerPath string) (*client.Client, error) {
	key, err := readKey(opts.KeyPath)
	if err != nil {
		return nil, err
	}
	var copts []client.Option
	if payerPath != "" {
		payer, err := readKey(payerPath)
		if err != nil {
			return nil, err
		}
		copts = append(copts, client.WithPayer(payer))
	}
	return client.New(s.reg, key, copts...), nil
}

func readKey(path string) (*proof.Key, error) {
	key, err := proof.ReadKeyFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("key file not found: %s (run 'tallybook keygen')", path))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read key", err)
	}
	return key, nil
}

func parseIdentityArg(name, s string) (ir.Identity, error) {
	id, err := ir.ParseIdentity(s)
	if err != nil {
		return ir.Identity{}, WrapExitError(ExitCommandError, "invalid "+name, err)
	}
	return id, nil
}

func parseAddressArg(name, s string) (ir.Address, error) {
	addr, err := ir.ParseAddress(s)
	if err != nil {
		return ir.Address{}, WrapExitError(ExitCommandError, "invalid "+name, err)
	}
	return addr, nil
}
