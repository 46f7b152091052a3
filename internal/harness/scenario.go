package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tallybook/internal/authz"
)

// DefaultFunds is airdropped to every identity when a scenario does not
// set funds.
const DefaultFunds uint64 = 1_000_000_000

// Scenario defines a scripted run of record operations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Identities are the named parties of the scenario.
	Identities []string `yaml:"identities"`

	// Funds is airdropped to each identity before the first step. Nil
	// means DefaultFunds; zero skips the airdrop.
	Funds *uint64 `yaml:"funds,omitempty"`

	Config ScenarioConfig `yaml:"config,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ScenarioConfig selects ownership policies and the deposit rate.
type ScenarioConfig struct {
	Todo PolicyConfig `yaml:"todo,omitempty"`
	Vote PolicyConfig `yaml:"vote,omitempty"`

	// LamportsPerByte overrides host.DefaultLamportsPerByte.
	LamportsPerByte *uint64 `yaml:"lamports_per_byte,omitempty"`
}

// PolicyConfig is an ownership policy with the admin given by name.
type PolicyConfig struct {
	Mode  string `yaml:"mode,omitempty"` // default self-service
	Admin string `yaml:"admin,omitempty"`
}

// Step is one operation performed by one identity.
type Step struct {
	// As is the acting identity.
	As string `yaml:"as"`

	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Owner names the owner of the record the step targets.
	Owner string `yaml:"owner,omitempty"`

	// Payer names a separate identity funding the deposit of a create.
	Payer string `yaml:"payer,omitempty"`

	Args StepArgs `yaml:"args,omitempty"`

	// Advance moves the clock forward by this many seconds before the
	// step runs.
	Advance int64 `yaml:"advance,omitempty"`

	// Expect is nil when the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// StepArgs are the operation arguments. Title and Name are record seeds;
// NewTitle and NewName rename on update.
type StepArgs struct {
	Title       *string `yaml:"title,omitempty"`
	Description *string `yaml:"description,omitempty"`
	Active      *bool   `yaml:"active,omitempty"`
	NewTitle    *string `yaml:"new_title,omitempty"`
	Name        *string `yaml:"name,omitempty"`
	NewName     *string `yaml:"new_name,omitempty"`
	Lamports    uint64  `yaml:"lamports,omitempty"`
}

// Expect specifies how a step must fail.
type Expect struct {
	Error string `yaml:"error"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind is "todo", "vote" or "receipt" (record, absent).
	Kind string `yaml:"kind,omitempty"`

	// Owner, Title and Name locate a todo or vote.
	Owner string `yaml:"owner,omitempty"`
	Title string `yaml:"title,omitempty"`
	Name  string `yaml:"name,omitempty"`

	// Voter locates a receipt of the vote given by Owner and Name.
	Voter string `yaml:"voter,omitempty"`

	// Expect holds expected field values (record). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of receipts (receipt_count).
	Count *int `yaml:"count,omitempty"`

	// Identity and Lamports describe an expected balance (balance).
	Identity string  `yaml:"identity,omitempty"`
	Lamports *uint64 `yaml:"lamports,omitempty"`
}

// Operations.
const (
	OpAirdrop    = "airdrop"
	OpCreateTodo = "create_todo"
	OpUpdateTodo = "update_todo"
	OpDeleteTodo = "delete_todo"
	OpCreateVote = "create_vote"
	OpUpdateVote = "update_vote"
	OpCastVote   = "cast_vote"
	OpDeleteVote = "delete_vote"
)

// Assertion types.
const (
	AssertRecord       = "record"
	AssertAbsent       = "absent"
	AssertReceiptCount = "receipt_count"
	AssertBalance      = "balance"
)

// Record kinds named by assertions.
const (
	KindTodo    = "todo"
	KindVote    = "vote"
	KindReceipt = "receipt"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and every name
// refers to a declared identity.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Identities) == 0 {
		return fmt.Errorf("identities list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	known := make(map[string]bool, len(s.Identities))
	for i, name := range s.Identities {
		if name == "" {
			return fmt.Errorf("identities[%d]: empty name", i)
		}
		if known[name] {
			return fmt.Errorf("identities[%d]: duplicate name %q", i, name)
		}
		known[name] = true
	}
	checkName := func(where, name string) error {
		if name != "" && !known[name] {
			return fmt.Errorf("%s: unknown identity %q", where, name)
		}
		return nil
	}

	for prog, p := range map[string]PolicyConfig{"todo": s.Config.Todo, "vote": s.Config.Vote} {
		if p.Mode == "" {
			continue
		}
		mode, err := authz.ParseMode(p.Mode)
		if err != nil {
			return fmt.Errorf("config.%s: %w", prog, err)
		}
		if mode == authz.AdminIssued && p.Admin == "" {
			return fmt.Errorf("config.%s: admin is required for %s", prog, mode)
		}
		if err := checkName("config."+prog+".admin", p.Admin); err != nil {
			return err
		}
	}

	for i, step := range s.Steps {
		where := fmt.Sprintf("steps[%d]", i)
		if step.As == "" {
			return fmt.Errorf("%s: as is required", where)
		}
		for _, name := range []string{step.As, step.Owner, step.Payer} {
			if err := checkName(where, name); err != nil {
				return err
			}
		}
		if err := validateArgs(where, step); err != nil {
			return err
		}
		if step.Expect != nil && step.Expect.Error == "" {
			return fmt.Errorf("%s.expect: error is required", where)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, checkName); err != nil {
			return err
		}
	}
	return nil
}

// validateArgs checks the seeds each operation needs are present.
func validateArgs(where string, step Step) error {
	switch step.Op {
	case OpAirdrop:
		if step.Args.Lamports == 0 {
			return fmt.Errorf("%s: lamports is required for %s", where, step.Op)
		}
	case OpCreateTodo, OpUpdateTodo, OpDeleteTodo:
		if step.Args.Title == nil {
			return fmt.Errorf("%s: title is required for %s", where, step.Op)
		}
	case OpCreateVote, OpUpdateVote, OpCastVote, OpDeleteVote:
		if step.Args.Name == nil {
			return fmt.Errorf("%s: name is required for %s", where, step.Op)
		}
	case "":
		return fmt.Errorf("%s: op is required", where)
	default:
		return fmt.Errorf("%s: unknown op %q", where, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, checkName func(where, name string) error) error {
	where := fmt.Sprintf("assertions[%d]", index)
	for _, name := range []string{a.Owner, a.Voter, a.Identity} {
		if err := checkName(where, name); err != nil {
			return err
		}
	}

	switch a.Type {
	case AssertRecord, AssertAbsent:
		if err := validateLocator(where, a); err != nil {
			return err
		}
		if a.Type == AssertRecord && len(a.Expect) == 0 {
			return fmt.Errorf("%s: expect is required for record", where)
		}
	case AssertReceiptCount:
		if a.Owner == "" || a.Name == "" {
			return fmt.Errorf("%s: owner and name are required for receipt_count", where)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative for receipt_count", where)
		}
	case AssertBalance:
		if a.Identity == "" || a.Lamports == nil {
			return fmt.Errorf("%s: identity and lamports are required for balance", where)
		}
	case "":
		return fmt.Errorf("%s: type is required", where)
	default:
		return fmt.Errorf("%s: unknown assertion type %q", where, a.Type)
	}
	return nil
}

func validateLocator(where string, a *Assertion) error {
	if a.Owner == "" {
		return fmt.Errorf("%s: owner is required for %s", where, a.Type)
	}
	switch a.Kind {
	case KindTodo:
		if a.Title == "" {
			return fmt.Errorf("%s: title is required for a todo", where)
		}
	case KindVote:
		if a.Name == "" {
			return fmt.Errorf("%s: name is required for a vote", where)
		}
	case KindReceipt:
		if a.Name == "" || a.Voter == "" {
			return fmt.Errorf("%s: name and voter are required for a receipt", where)
		}
	default:
		return fmt.Errorf("%s: unknown kind %q", where, a.Kind)
	}
	return nil
}
