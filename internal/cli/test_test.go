package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const passingScenario = `name: one_todo
description: alice creates a todo
identities: [alice]
steps:
  - as: alice
    op: create_todo
    args: { title: Buy milk }
assertions:
  - type: record
    kind: todo
    owner: alice
    title: Buy milk
    expect: { active: true }
`

const failingScenario = `name: wrong_outcome
description: a create that is expected to fail but succeeds
identities: [alice]
steps:
  - as: alice
    op: create_vote
    args: { name: Banana }
    expect: { error: UNAUTHORIZED }
`

func runTestCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	buf, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	buf, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	buf, err := runTestCommand(t, "text", harnessScenarios)
	require.NoError(t, err, buf.String())
	assert.Contains(t, buf.String(), "✓ todo_lifecycle")
	assert.Contains(t, buf.String(), "✓ vote_cast")
	assert.Contains(t, buf.String(), "4 passed, 0 failed, 4 total")
}

func TestTestCommandFilter(t *testing.T) {
	buf, err := runTestCommand(t, "json", harnessScenarios, "--filter", "vote_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "vote_cast", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	writeScenario(t, scenarios, "one_todo.yaml", passingScenario)

	buf, err := runTestCommand(t, "text", scenarios, "--update")
	require.NoError(t, err, buf.String())

	golden := filepath.Join(root, "golden", "one_todo.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario":"one_todo"`)

	buf, err = runTestCommand(t, "text", scenarios)
	require.NoError(t, err, buf.String())
	assert.Contains(t, buf.String(), "1 passed, 0 failed")

	// A stale golden file fails the scenario.
	require.NoError(t, os.WriteFile(golden, []byte(`{}`), 0o644))
	buf, err = runTestCommand(t, "text", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "snapshot does not match")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	scenarios := filepath.Join(t.TempDir(), "scenarios")
	writeScenario(t, scenarios, "wrong_outcome.yaml", failingScenario)
	writeScenario(t, scenarios, "broken.yml", "name: [")

	buf, err := runTestCommand(t, "json", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Failed)
	assert.Equal(t, 2, resp.Data.Total)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TEST_FAILED", resp.Error.Code)

	byName := map[string]ScenarioResult{}
	for _, s := range resp.Data.Scenarios {
		byName[s.Name] = s
	}
	require.Contains(t, byName, "wrong_outcome")
	assert.Contains(t, byName["wrong_outcome"].Errors[0], "expected UNAUTHORIZED, got ok")
	require.Contains(t, byName, "broken.yml")
	assert.Contains(t, byName["broken.yml"].Errors[0], "failed to load scenario")
}
