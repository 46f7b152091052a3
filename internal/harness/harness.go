package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tallybook/internal/authz"
	"github.com/roach88/tallybook/internal/client"
	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/kvstore"
	"github.com/roach88/tallybook/internal/program"
	"github.com/roach88/tallybook/internal/proof"
	"github.com/roach88/tallybook/internal/testutil"
)

// outcomeOK is the outcome of a step that succeeded.
const outcomeOK = "ok"

// Harness is the state of one scenario run.
type Harness struct {
	rt     *host.Runtime
	reg    *program.Registry
	clock  *testutil.DeterministicClock
	keys   map[string]*proof.Key
	names  map[ir.Identity]string
	order  []string
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory address space. The returned error
// is reserved for infrastructure failures; failed steps and assertions are
// reported in Result.Errors.
//
// Execution flow:
//  1. Open an in-memory Badger address space
//  2. Build the runtime with a deterministic clock and transaction IDs
//  3. Fund every identity
//  4. Execute steps, comparing each outcome with its expect clause
//  5. Collect the transaction log and evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	space, err := kvstore.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer space.Close()

	todoPolicy, err := policy(scenario.Config.Todo)
	if err != nil {
		return nil, fmt.Errorf("todo policy: %w", err)
	}
	votePolicy, err := policy(scenario.Config.Vote)
	if err != nil {
		return nil, fmt.Errorf("vote policy: %w", err)
	}
	rent := host.DefaultRent()
	if scenario.Config.LamportsPerByte != nil {
		rent.LamportsPerByte = *scenario.Config.LamportsPerByte
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	clock := testutil.NewDeterministicClock(0)
	rt := host.New(space,
		host.WithClock(clock),
		host.WithRent(rent),
		host.WithTxIDGenerator(testutil.NewSequenceGenerator("tx")),
		host.WithLogger(logger),
	)

	h := &Harness{
		rt:     rt,
		reg:    program.NewRegistry(rt, todoPolicy, votePolicy),
		clock:  clock,
		keys:   make(map[string]*proof.Key, len(scenario.Identities)),
		names:  make(map[ir.Identity]string, len(scenario.Identities)),
		order:  scenario.Identities,
		logger: logger,
	}

	funds := DefaultFunds
	if scenario.Funds != nil {
		funds = *scenario.Funds
	}
	for _, name := range scenario.Identities {
		key := testutil.Key(name)
		h.keys[name] = key
		h.names[key.Identity()] = name
		if funds == 0 {
			continue
		}
		if _, err := rt.Airdrop(ctx, key.Identity(), funds); err != nil {
			return nil, fmt.Errorf("fund %s: %w", name, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.runStep(ctx, i, step, result)
	}

	entries, err := rt.ReadLog(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	for _, e := range entries {
		result.Log = append(result.Log, h.logEvent(e))
	}

	for _, msg := range EvaluateAssertions(ctx, h, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// policy resolves a PolicyConfig, mapping the admin name to its key.
func policy(p PolicyConfig) (authz.Policy, error) {
	if p.Mode == "" {
		return authz.SelfServicePolicy(), nil
	}
	mode, err := authz.ParseMode(p.Mode)
	if err != nil {
		return authz.Policy{}, err
	}
	out := authz.Policy{Mode: mode}
	if p.Admin != "" {
		out.Admin = testutil.Identity(p.Admin)
	}
	return out, out.Validate()
}

// runStep executes one step and records its outcome.
func (h *Harness) runStep(ctx context.Context, i int, step Step, result *Result) {
	h.clock.Advance(step.Advance)

	err := h.execute(ctx, step)
	got := outcomeOK
	if err != nil {
		got = program.ErrorCode(err)
	}
	want := outcomeOK
	if step.Expect != nil {
		want = step.Expect.Error
	}

	result.AddStep(StepEvent{Step: i, As: step.As, Op: step.Op, Outcome: got})
	if got != want {
		msg := fmt.Sprintf("steps[%d] %s as %s: expected %s, got %s", i, step.Op, step.As, want, got)
		if err != nil {
			msg += ": " + err.Error()
		}
		result.AddError(msg)
	}

	h.logger.Info("step completed",
		"step", i,
		"op", step.Op,
		"as", step.As,
		"outcome", got,
	)
}

func (h *Harness) execute(ctx context.Context, step Step) error {
	c := h.client(step)
	a := step.Args
	switch step.Op {
	case OpAirdrop:
		return c.Airdrop(ctx, a.Lamports)
	case OpCreateTodo:
		_, err := c.CreateTodo(ctx, *a.Title, deref(a.Description))
		return err
	case OpUpdateTodo:
		return c.UpdateTodo(ctx, h.todoAddress(step), client.TodoUpdate{
			Title:       a.NewTitle,
			Description: a.Description,
			Active:      a.Active,
		})
	case OpDeleteTodo:
		return c.DeleteTodo(ctx, h.todoAddress(step))
	case OpCreateVote:
		_, err := c.CreateVote(ctx, *a.Name)
		return err
	case OpUpdateVote:
		return c.UpdateVote(ctx, h.voteAddress(step), a.NewName)
	case OpCastVote:
		return c.CastVote(ctx, h.voteAddress(step))
	case OpDeleteVote:
		return c.DeleteVote(ctx, h.voteAddress(step))
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

func (h *Harness) client(step Step) *client.Client {
	var opts []client.Option
	if step.Payer != "" {
		opts = append(opts, client.WithPayer(h.keys[step.Payer]))
	}
	return client.New(h.reg, h.keys[step.As], opts...)
}

// owner is the named owner, or the owner p assigns to the acting identity.
func (h *Harness) owner(p authz.Policy, step Step) ir.Identity {
	if step.Owner != "" {
		return h.identity(step.Owner)
	}
	return p.OwnerFor(h.identity(step.As))
}

func (h *Harness) todoAddress(step Step) ir.Address {
	return ir.TodoAddress(h.owner(h.reg.Todo.Policy, step), *step.Args.Title)
}

func (h *Harness) voteAddress(step Step) ir.Address {
	return ir.VoteAddress(h.owner(h.reg.Vote.Policy, step), *step.Args.Name)
}

func (h *Harness) identity(name string) ir.Identity {
	return h.keys[name].Identity()
}

// nameOf returns the scenario name of id, or its hex form.
func (h *Harness) nameOf(id ir.Identity) string {
	if name, ok := h.names[id]; ok {
		return name
	}
	return id.String()
}

func (h *Harness) logEvent(e ir.LogEntry) LogEvent {
	signers := make([]string, 0, len(e.Signers))
	for _, s := range e.Signers {
		signers = append(signers, h.nameOf(s))
	}
	return LogEvent{
		Seq:         e.Seq,
		TxID:        e.TxID,
		Program:     e.Program,
		Instruction: e.Instruction,
		Signers:     signers,
		Timestamp:   int64(e.Timestamp),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
