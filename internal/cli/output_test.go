package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tallybook/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(balanceView{Lamports: 42})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), data["lamports"])
	assert.Equal(t, ir.Identity{}.String(), data["identity"])
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "no record at address", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "no record at address", resp.Error.Message)
	assert.Nil(t, resp.Data)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(balanceView{Lamports: 7})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), ": 7 lamports")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("UNAUTHORIZED", "caller is not the record owner", "todo")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [UNAUTHORIZED]: caller is not the record owner")
	assert.Contains(t, buf.String(), "Details: todo")
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	cause := ir.WithOp(ir.ErrDuplicateVote, "cast_vote", ir.Address{})
	err := formatter.Fail("cast vote", cause)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.True(t, exitErr.Reported)
	assert.ErrorIs(t, err, ir.ErrDuplicateVote)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DUPLICATE_VOTE", resp.Error.Code)
}

func TestOutputFormatter_FailDetails(t *testing.T) {
	addr := ir.TodoAddress(ir.Identity{1}, "Buy milk")
	cause := ir.WithOp(ir.ErrUnauthorized, "update_todo", addr)

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.Error(t, formatter.Fail("update todo", cause))

		var resp struct {
			Error struct {
				Code    string         `json:"code"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
		assert.Equal(t, "update_todo", resp.Error.Details["op"])
		assert.Equal(t, addr.String(), resp.Error.Details["address"])
		assert.NotContains(t, resp.Error.Details, "field")
	})

	t.Run("verbose text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}
		require.Error(t, formatter.Fail("update todo", cause))
		assert.Contains(t, buf.String(), "Error [UNAUTHORIZED]")
		assert.Contains(t, buf.String(), "  op:      update_todo\n")
		assert.Contains(t, buf.String(), "  address: "+addr.String()+"\n")
	})

	t.Run("plain error has no details", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.Error(t, formatter.Fail("open", errors.New("disk on fire")))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Nil(t, resp.Error.Details)
	})
}

func TestOutputFormatter_TextViews(t *testing.T) {
	owner := ir.Identity{7}
	addr := ir.TodoAddress(owner, "Buy milk")
	yes := true

	tests := []struct {
		name string
		data any
		want string
	}{
		{
			name: "todo",
			data: todoView{Address: addr, Owner: owner, Title: "Buy milk", Description: "two litres", Active: true},
			want: "Buy milk [active]\n" +
				"  two litres\n" +
				"  address:  " + addr.String() + "\n" +
				"  owner:    " + owner.String() + "\n" +
				"  created:  1970-01-01T00:00:00Z\n" +
				"  modified: 1970-01-01T00:00:00Z\n",
		},
		{
			name: "vote with receipt",
			data: voteView{Address: addr, Owner: owner, Name: "lunch", Count: 3, HasVoted: &yes},
			want: "lunch: 3 votes\n" +
				"  voted:    true\n" +
				"  address:  " + addr.String() + "\n" +
				"  owner:    " + owner.String() + "\n" +
				"  created:  1970-01-01T00:00:00Z\n" +
				"  modified: 1970-01-01T00:00:00Z\n",
		},
		{
			name: "todo list",
			data: todoListView{Todos: []todoView{
				{Address: addr, Title: "Buy milk", Active: false},
				{Address: addr, Title: "Walk dog", Active: true},
			}},
			want: "[x] Buy milk  " + addr.Short() + "\n[ ] Walk dog  " + addr.Short() + "\n",
		},
		{name: "empty vote list", data: voteListView{}, want: "No votes.\n"},
		{name: "empty log", data: logView{}, want: "No transactions.\n"},
		{name: "not a view", data: "plain", want: "plain\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf}
			require.NoError(t, formatter.Success(tt.data))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("opened %s", "tallybook.db")
	assert.Empty(t, out.String())
	assert.Equal(t, "opened tallybook.db\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("dropped")
	assert.NotContains(t, errOut.String(), "dropped")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"command error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped", fmt.Errorf("run: %w", WrapExitError(ExitCommandError, "open", errors.New("x"))), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
	assert.Equal(t, "open: x", WrapExitError(ExitCommandError, "open", errors.New("x")).Error())
}
