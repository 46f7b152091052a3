package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tallybook", cmd.Use)
	assert.Contains(t, cmd.Long, "one-vote-per-identity")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"keygen"}, {"identity"}, {"airdrop"}, {"balance"},
		{"address", "todo"}, {"address", "vote"}, {"address", "receipt"},
		{"todo", "create"}, {"todo", "update"}, {"todo", "delete"}, {"todo", "show"}, {"todo", "list"},
		{"vote", "create"}, {"vote", "update"}, {"vote", "cast"}, {"vote", "delete"}, {"vote", "show"}, {"vote", "list"},
		{"log"}, {"test"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	keyFlag := cmd.PersistentFlags().Lookup("key")
	require.NotNil(t, keyFlag)
	assert.Equal(t, DefaultKeyPath, keyFlag.DefValue)

	for _, name := range []string{"config", "db", "backend"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestTodoUpdateFlags(t *testing.T) {
	cmd := NewRootCommand()
	updateCmd, _, err := cmd.Find([]string{"todo", "update"})
	require.NoError(t, err)

	for _, name := range []string{"owner", "title", "description", "active"} {
		assert.NotNil(t, updateCmd.Flags().Lookup(name), name)
	}
}

func TestVoteCastFlags(t *testing.T) {
	cmd := NewRootCommand()
	castCmd, _, err := cmd.Find([]string{"vote", "cast"})
	require.NoError(t, err)

	assert.NotNil(t, castCmd.Flags().Lookup("owner"))
	assert.NotNil(t, castCmd.Flags().Lookup("payer"))
}

func TestExecuteInvalidFormat(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := Execute(context.Background(), []string{"--format", "xml", "address", "todo", "00", "x"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), `invalid format "xml"`)
}

func TestExecuteUnknownCommand(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := Execute(context.Background(), []string{"frobnicate"}, stdout, stderr)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr.String(), "unknown command")
}
