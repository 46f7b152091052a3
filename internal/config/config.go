// Package config loads tallybook configuration.
//
// Sources, later ones winning:
//
//  1. Default()
//  2. a YAML file (unknown keys are rejected)
//  3. TALLYBOOK_* environment variables, e.g. TALLYBOOK_DATABASE_BACKEND
//
// The merged result is validated against the embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/kvstore"
	"github.com/roach88/tallybook/internal/store"
)

//go:embed schema.cue
var schemaCUE string

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "tallybook"

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Todo     ProgramConfig  `yaml:"todo"     json:"todo"`
	Vote     ProgramConfig  `yaml:"vote"     json:"vote"`
	Rent     RentConfig     `yaml:"rent"     json:"rent"`
	Faucet   FaucetConfig   `yaml:"faucet"   json:"faucet"`
	Log      LogConfig      `yaml:"log"      json:"log"`
}

type DatabaseConfig struct {
	// Backend is "sqlite" or "badger".
	Backend string `yaml:"backend" json:"backend"`

	// Path is the SQLite file or the Badger directory. An empty Badger
	// path runs in memory.
	Path string `yaml:"path" json:"path"`
}

// ProgramConfig selects the creation-ownership mode of one program.
type ProgramConfig struct {
	Mode  string `yaml:"mode"  json:"mode"`
	Admin string `yaml:"admin" json:"admin"`
}

type RentConfig struct {
	LamportsPerByte uint64 `yaml:"lamports_per_byte" json:"lamports_per_byte" split_words:"true"`
}

type FaucetConfig struct {
	// Limit caps a single airdrop. Zero disables the faucet.
	Limit uint64 `yaml:"limit" json:"limit"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the built-in configuration: SQLite at tallybook.db,
// self-service todos, self-service votes.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Backend: BackendSQLite, Path: "tallybook.db"},
		Todo:     ProgramConfig{Mode: string(authz.SelfService)},
		Vote:     ProgramConfig{Mode: string(authz.SelfService)},
		Rent:     RentConfig{LamportsPerByte: host.DefaultLamportsPerByte},
		Faucet:   FaucetConfig{Limit: host.DefaultAirdropLimit},
		Log:      LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decodeYAML(f); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. The
// environment is not consulted.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decodeYAML(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// Validate checks the configuration against the CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	val := ctx.Encode(c)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TodoPolicy is the ownership policy of the todo program.
func (c *Config) TodoPolicy() (authz.Policy, error) {
	return c.Todo.policy()
}

// VotePolicy is the ownership policy of the vote program.
func (c *Config) VotePolicy() (authz.Policy, error) {
	return c.Vote.policy()
}

func (p ProgramConfig) policy() (authz.Policy, error) {
	mode, err := authz.ParseMode(p.Mode)
	if err != nil {
		return authz.Policy{}, err
	}
	policy := authz.Policy{Mode: mode}
	if p.Admin != "" {
		if policy.Admin, err = ir.ParseIdentity(p.Admin); err != nil {
			return authz.Policy{}, fmt.Errorf("admin: %w", err)
		}
	}
	if err := policy.Validate(); err != nil {
		return authz.Policy{}, err
	}
	return policy, nil
}

// HostOptions converts the rent and faucet settings to runtime options.
func (c *Config) HostOptions() []host.Option {
	return []host.Option{
		host.WithRent(host.Rent{LamportsPerByte: c.Rent.LamportsPerByte}),
		host.WithAirdropLimit(c.Faucet.Limit),
	}
}

// OpenSpace opens the configured address space.
func (c *Config) OpenSpace(logger *slog.Logger) (host.AddressSpace, error) {
	switch c.Database.Backend {
	case BackendSQLite:
		return store.Open(c.Database.Path)
	case BackendBadger:
		return kvstore.Open(c.Database.Path, kvstore.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown database backend %q", c.Database.Backend)
	}
}

// LogLevel maps the configured level to slog.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
