package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tallybook/internal/authz"
)

const adminHex = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	todo, err := cfg.TodoPolicy()
	require.NoError(t, err)
	assert.Equal(t, authz.SelfService, todo.Mode)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestParseAdminIssued(t *testing.T) {
	cfg, err := Parse([]byte(`
database:
  backend: badger
  path: ""
vote:
  mode: admin-issued
  admin: ` + adminHex + `
log:
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, cfg.Database.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())

	vote, err := cfg.VotePolicy()
	require.NoError(t, err)
	assert.Equal(t, authz.AdminIssued, vote.Mode)
	assert.Equal(t, adminHex, vote.Admin.String())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "databse:\n  backend: sqlite\n"},
		{"unknown backend", "database:\n  backend: postgres\n"},
		{"sqlite without path", "database:\n  backend: sqlite\n  path: \"\"\n"},
		{"unknown mode", "todo:\n  mode: anarchy\n"},
		{"admin mode without admin", "vote:\n  mode: admin-issued\n"},
		{"admin not hex", "vote:\n  mode: admin-issued\n  admin: alice\n"},
		{"bad log level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tallybook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  backend: sqlite\n  path: from-file.db\n"), 0o644))

	t.Setenv("TALLYBOOK_DATABASE_PATH", "from-env.db")
	t.Setenv("TALLYBOOK_RENT_LAMPORTS_PER_BYTE", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, uint64(7), cfg.Rent.LamportsPerByte)
	assert.Len(t, cfg.HostOptions(), 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "open config"))
}

func TestOpenSpace(t *testing.T) {
	for _, backend := range []string{BackendSQLite, BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			cfg := Default()
			cfg.Database.Backend = backend
			cfg.Database.Path = filepath.Join(t.TempDir(), "data")

			space, err := cfg.OpenSpace(slog.Default())
			require.NoError(t, err)
			defer space.Close()

			entries, err := space.ReadLog(t.Context(), 0, 0)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
