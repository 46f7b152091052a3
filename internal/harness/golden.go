package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tallybook/internal/ir"
)

// Snapshot captures the observable outcome of a scenario run.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string      `json:"scenario"`
	Steps        []StepEvent `json:"steps"`
	Log          []LogEvent  `json:"log"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, e := range s.Steps {
		steps[i] = map[string]any{
			"step":    e.Step,
			"as":      e.As,
			"op":      e.Op,
			"outcome": e.Outcome,
		}
	}
	log := make([]any, len(s.Log))
	for i, e := range s.Log {
		log[i] = map[string]any{
			"seq":         e.Seq,
			"tx":          e.TxID,
			"program":     e.Program,
			"instruction": e.Instruction,
			"signers":     e.Signers,
			"timestamp":   e.Timestamp,
		}
	}
	return map[string]any{
		"scenario": s.ScenarioName,
		"steps":    steps,
		"log":      log,
	}
}

// MarshalSnapshot renders the snapshot of result as canonical JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Steps: result.Steps, Log: result.Log}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. Test failure (via
// goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the golden file for
// scenarioName without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
