package harness

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/record"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions evaluates all assertions against the final state of
// h. Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, h *Harness, assertions []Assertion) []string {
	var errors []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRecord:
			err = h.assertRecord(ctx, a)
		case AssertAbsent:
			err = h.assertAbsent(ctx, a)
		case AssertReceiptCount:
			err = h.assertReceiptCount(ctx, a)
		case AssertBalance:
			err = h.assertBalance(ctx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errors
}

// locate returns the address an assertion refers to.
func (h *Harness) locate(a Assertion) ir.Address {
	owner := h.identity(a.Owner)
	switch a.Kind {
	case KindTodo:
		return ir.TodoAddress(owner, a.Title)
	case KindReceipt:
		return ir.ReceiptAddress(ir.VoteAddress(owner, a.Name), h.identity(a.Voter))
	default:
		return ir.VoteAddress(owner, a.Name)
	}
}

func describe(a Assertion) string {
	switch a.Kind {
	case KindTodo:
		return fmt.Sprintf("todo %q of %s", a.Title, a.Owner)
	case KindReceipt:
		return fmt.Sprintf("receipt of %s for vote %q of %s", a.Voter, a.Name, a.Owner)
	default:
		return fmt.Sprintf("vote %q of %s", a.Name, a.Owner)
	}
}

// assertRecord decodes the record and compares the expected fields.
func (h *Harness) assertRecord(ctx context.Context, a Assertion) error {
	acct, err := h.rt.Account(ctx, h.locate(a))
	if err != nil {
		return err
	}
	if acct == nil {
		return &AssertionError{Type: AssertRecord, Expected: describe(a), Actual: "no record at address"}
	}

	actual, err := h.fields(a.Kind, acct.Data)
	if err != nil {
		return &AssertionError{Type: AssertRecord, Expected: describe(a), Actual: err.Error()}
	}

	// Sort keys for deterministic failure messages
	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, key := range keys {
		got, ok := actual[key]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: no such field", key))
			continue
		}
		if !valuesEqual(a.Expect[key], got) {
			mismatches = append(mismatches, fmt.Sprintf("%s = %v, want %v", key, got, a.Expect[key]))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: describe(a),
			Actual:   strings.Join(mismatches, "; "),
		}
	}
	return nil
}

// fields flattens a stored record into comparable values. Identities are
// reported by scenario name.
func (h *Harness) fields(kind string, data []byte) (map[string]any, error) {
	switch kind {
	case KindTodo:
		rec, err := record.Decode(record.TodoKind, data)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"owner":       h.nameOf(rec.Owner),
			"title":       rec.Fields.Title,
			"description": rec.Fields.Description,
			"active":      rec.Fields.Active,
			"created_at":  int64(rec.CreatedAt),
			"modified_at": int64(rec.ModifiedAt),
		}, nil
	case KindVote:
		rec, err := record.Decode(record.VoteKind, data)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"owner":       h.nameOf(rec.Owner),
			"name":        rec.Fields.Name,
			"count":       rec.Fields.Count,
			"created_at":  int64(rec.CreatedAt),
			"modified_at": int64(rec.ModifiedAt),
		}, nil
	case KindReceipt:
		rec, err := record.Decode(record.ReceiptKind, data)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"owner":       h.nameOf(rec.Owner),
			"created_at":  int64(rec.CreatedAt),
			"modified_at": int64(rec.ModifiedAt),
		}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

func (h *Harness) assertAbsent(ctx context.Context, a Assertion) error {
	acct, err := h.rt.Account(ctx, h.locate(a))
	if err != nil {
		return err
	}
	if acct != nil {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: "no " + describe(a),
			Actual:   fmt.Sprintf("account holds %d bytes and %d lamports", len(acct.Data), acct.Lamports),
		}
	}
	return nil
}

// assertReceiptCount counts the scenario identities holding a receipt for
// the vote. Receipts carry no back-reference, so only known voters can be
// counted.
func (h *Harness) assertReceiptCount(ctx context.Context, a Assertion) error {
	vote := ir.VoteAddress(h.identity(a.Owner), a.Name)
	var voters []string
	for _, name := range h.order {
		acct, err := h.rt.Account(ctx, ir.ReceiptAddress(vote, h.identity(name)))
		if err != nil {
			return err
		}
		if acct != nil && record.Is(record.ReceiptKind, acct.Data) {
			voters = append(voters, name)
		}
	}
	if len(voters) != *a.Count {
		return &AssertionError{
			Type:     AssertReceiptCount,
			Expected: fmt.Sprintf("%d receipts for vote %q of %s", *a.Count, a.Name, a.Owner),
			Actual:   fmt.Sprintf("%d receipts %v", len(voters), voters),
		}
	}
	return nil
}

func (h *Harness) assertBalance(ctx context.Context, a Assertion) error {
	got, err := h.rt.Balance(ctx, h.identity(a.Identity))
	if err != nil {
		return err
	}
	if got != *a.Lamports {
		return &AssertionError{
			Type:     AssertBalance,
			Expected: fmt.Sprintf("%s holds %d lamports", a.Identity, *a.Lamports),
			Actual:   fmt.Sprintf("%d lamports", got),
		}
	}
	return nil
}

// valuesEqual compares a YAML-decoded expectation with a record value.
// Integers compare by value regardless of their Go type.
func valuesEqual(expected, actual any) bool {
	return reflect.DeepEqual(normalize(expected), normalize(actual))
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
	case ir.Timestamp:
		return int64(n)
	}
	return v
}
