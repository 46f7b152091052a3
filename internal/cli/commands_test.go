package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/proof"
)

// cliEnv runs commands against one database with per-identity key files.
type cliEnv struct {
	t   *testing.T
	dir string
	db  []string
}

func newCLIEnv(t *testing.T, backend string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tallybook.db")
	if backend == "badger" {
		path = filepath.Join(dir, "badger")
	}
	return &cliEnv{t: t, dir: dir, db: []string{"--backend", backend, "--db", path}}
}

func (e *cliEnv) keyPath(name string) string {
	return filepath.Join(e.dir, name+".key")
}

// run executes args as name and returns stdout, stderr and the exit code.
func (e *cliEnv) run(name string, args ...string) (string, string, int) {
	e.t.Helper()
	full := append(append([]string{"--key", e.keyPath(name)}, e.db...), args...)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := Execute(context.Background(), full, stdout, stderr)
	return stdout.String(), stderr.String(), code
}

// runJSON runs args with --format json and decodes the response.
func (e *cliEnv) runJSON(name string, args ...string) (CLIResponse, int) {
	e.t.Helper()
	out, stderr, code := e.run(name, append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp), "stdout=%q stderr=%q", out, stderr)
	return resp, code
}

// ok runs args with --format json, requires success and returns the data.
func (e *cliEnv) ok(name string, args ...string) map[string]any {
	e.t.Helper()
	resp, code := e.runJSON(name, args...)
	require.Equal(e.t, ExitSuccess, code, "%v: %+v", args, resp.Error)
	require.Equal(e.t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(e.t, ok)
	return data
}

// identity creates a passphrase key for name and funds its wallet.
func (e *cliEnv) identity(name string) ir.Identity {
	e.t.Helper()
	data := e.ok(name, "keygen", "--passphrase", name)
	e.ok(name, "airdrop", "1000000000")
	return ir.MustParseIdentity(data["identity"].(string))
}

func TestKeygen(t *testing.T) {
	env := newCLIEnv(t, "sqlite")

	data := env.ok("alice", "keygen", "--passphrase", "alice")
	assert.Equal(t, proof.FromPassphrase("alice").Identity().String(), data["identity"])
	assert.Equal(t, env.keyPath("alice"), data["key_file"])

	// Existing key files are kept unless --force is given.
	_, stderr, code := env.run("alice", "keygen")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "already exists")

	data = env.ok("alice", "keygen", "--force")
	assert.NotEqual(t, proof.FromPassphrase("alice").Identity().String(), data["identity"])

	shown := env.ok("alice", "identity")
	assert.Equal(t, data["identity"], shown["identity"])
}

func TestMissingKeyFile(t *testing.T) {
	env := newCLIEnv(t, "sqlite")

	_, stderr, code := env.run("nobody", "todo", "create", "Buy milk")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "key file not found")
	assert.Contains(t, stderr, "tallybook keygen")
}

func TestAirdropAndBalance(t *testing.T) {
	env := newCLIEnv(t, "sqlite")
	alice := env.identity("alice")

	data := env.ok("alice", "airdrop", "500")
	assert.Equal(t, float64(1_000_000_500), data["lamports"])

	data = env.ok("bob", "balance", alice.String())
	assert.Equal(t, alice.String(), data["identity"])
	assert.Equal(t, float64(1_000_000_500), data["lamports"])

	_, stderr, code := env.run("alice", "airdrop", "lots")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid lamports")
}

func TestAddressOffline(t *testing.T) {
	alice := proof.FromPassphrase("alice").Identity()
	bob := proof.FromPassphrase("bob").Identity()
	vote := ir.VoteAddress(alice, "Banana")

	tests := []struct {
		args []string
		want ir.Address
	}{
		{[]string{"address", "todo", alice.String(), "Buy milk"}, ir.TodoAddress(alice, "Buy milk")},
		{[]string{"address", "vote", alice.String(), "Banana"}, vote},
		{[]string{"address", "receipt", vote.String(), bob.String()}, ir.ReceiptAddress(vote, bob)},
	}
	for _, tt := range tests {
		t.Run(tt.args[1], func(t *testing.T) {
			stdout := &bytes.Buffer{}
			code := Execute(context.Background(), tt.args, stdout, &bytes.Buffer{})
			require.Equal(t, ExitSuccess, code)
			assert.Equal(t, tt.want.String()+"\n", stdout.String())
		})
	}

	stderr := &bytes.Buffer{}
	code := Execute(context.Background(), []string{"address", "todo", "not-hex", "x"}, &bytes.Buffer{}, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "invalid owner")
}

func TestTodoLifecycle(t *testing.T) {
	for _, backend := range []string{"sqlite", "badger"} {
		t.Run(backend, func(t *testing.T) {
			env := newCLIEnv(t, backend)
			alice := env.identity("alice")
			env.identity("bob")

			created := env.ok("alice", "todo", "create", "Buy milk", "--description", "two litres")
			assert.Equal(t, ir.TodoAddress(alice, "Buy milk").String(), created["address"])
			assert.Equal(t, alice.String(), created["owner"])
			assert.Equal(t, "two litres", created["description"])
			assert.Equal(t, true, created["active"])

			updated := env.ok("alice", "todo", "update", "Buy milk", "--active=false")
			assert.Equal(t, false, updated["active"])
			assert.Equal(t, "two litres", updated["description"], "unset flags leave fields unchanged")
			assert.Equal(t, "Buy milk", updated["title"])

			resp, code := env.runJSON("bob", "todo", "update", "Buy milk", "--owner", alice.String(), "--title", "Sell milk")
			assert.Equal(t, ExitFailure, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

			resp, code = env.runJSON("alice", "todo", "create", "Buy milk")
			assert.Equal(t, ExitFailure, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)

			env.ok("alice", "todo", "create", "Walk dog")
			list := env.ok("bob", "todo", "list", "--owner", alice.String())
			assert.Len(t, list["todos"], 2)

			env.ok("alice", "todo", "delete", "Buy milk")
			resp, code = env.runJSON("alice", "todo", "show", "Buy milk")
			assert.Equal(t, ExitFailure, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "NOT_FOUND", resp.Error.Code)

			list = env.ok("alice", "todo", "list")
			assert.Len(t, list["todos"], 1)
		})
	}
}

func TestTodoListText(t *testing.T) {
	env := newCLIEnv(t, "sqlite")
	env.identity("alice")

	out, _, code := env.run("alice", "todo", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "No todos.\n", out)

	env.ok("alice", "todo", "create", "Buy milk")
	env.ok("alice", "todo", "update", "Buy milk", "--active=false")
	out, _, code = env.run("alice", "todo", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "[x] Buy milk")
}

func TestVoteLifecycle(t *testing.T) {
	env := newCLIEnv(t, "sqlite")
	alice := env.identity("alice")
	env.identity("bob")

	created := env.ok("alice", "vote", "create", "Banana")
	assert.Equal(t, ir.VoteAddress(alice, "Banana").String(), created["address"])
	assert.Equal(t, float64(0), created["count"])

	cast := env.ok("bob", "vote", "cast", "Banana", "--owner", alice.String())
	assert.Equal(t, float64(1), cast["count"])
	assert.Equal(t, true, cast["has_voted"])

	resp, code := env.runJSON("bob", "vote", "cast", "Banana", "--owner", alice.String())
	assert.Equal(t, ExitFailure, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DUPLICATE_VOTE", resp.Error.Code)

	shown := env.ok("alice", "vote", "show", "Banana")
	assert.Equal(t, float64(1), shown["count"])
	assert.Equal(t, false, shown["has_voted"])

	renamed := env.ok("alice", "vote", "update", "Banana", "--name", "Plantain")
	assert.Equal(t, "Plantain", renamed["name"])
	assert.Equal(t, float64(1), renamed["count"])
	assert.NotContains(t, renamed, "has_voted")

	list := env.ok("bob", "vote", "list", "--owner", alice.String())
	assert.Len(t, list["votes"], 1)

	resp, code = env.runJSON("bob", "vote", "delete", "Banana", "--owner", alice.String())
	assert.Equal(t, ExitFailure, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	env.ok("alice", "vote", "delete", "Banana")

	// The receipt outlives the vote, so a re-created vote at the same
	// address still refuses bob.
	env.ok("alice", "vote", "create", "Banana")
	resp, code = env.runJSON("bob", "vote", "cast", "Banana", "--owner", alice.String())
	assert.Equal(t, ExitFailure, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DUPLICATE_VOTE", resp.Error.Code)
}

func TestLog(t *testing.T) {
	env := newCLIEnv(t, "sqlite")
	env.identity("alice")
	env.ok("alice", "todo", "create", "Buy milk")
	env.runJSON("alice", "todo", "create", "Buy milk") // rejected, not logged

	data := env.ok("alice", "log")
	entries, ok := data["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 2)

	first := entries[0].(map[string]any)
	assert.Equal(t, float64(1), first["seq"])
	assert.Equal(t, "system", first["program"])
	assert.Equal(t, "airdrop", first["instruction"])

	second := entries[1].(map[string]any)
	assert.Equal(t, "todo", second["program"])
	assert.Equal(t, "create", second["instruction"])

	data = env.ok("alice", "log", "--after", "1")
	assert.Len(t, data["entries"], 1)

	data = env.ok("alice", "log", "--limit", "1")
	assert.Len(t, data["entries"], 1)
}
