// Package authz gates record mutation on proven identity.
//
// Signature and credential checks happen in the host before a handler runs;
// the identities reaching this package are already validated. authz only
// compares them against recorded owners and decides who owns a new record.
package authz

import (
	"fmt"

	"github.com/roach88/tallybook/internal/ir"
)

// Mode selects who owns newly created records.
type Mode string

const (
	// SelfService makes the caller the owner and payer of the record.
	SelfService Mode = "self-service"

	// AdminIssued makes a distinguished admin the owner. The admin must
	// sign the creation; any signer may fund the deposit, and other
	// identities interact with the record under their own identity.
	AdminIssued Mode = "admin-issued"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case SelfService, AdminIssued:
		return m, nil
	}
	return "", fmt.Errorf("unknown ownership mode %q: must be %q or %q", s, SelfService, AdminIssued)
}

// Policy is the creation-ownership configuration of one program.
type Policy struct {
	Mode  Mode
	Admin ir.Identity
}

// SelfServicePolicy returns a policy where callers own what they create.
func SelfServicePolicy() Policy {
	return Policy{Mode: SelfService}
}

// AdminPolicy returns a policy where admin owns every created record.
func AdminPolicy(admin ir.Identity) Policy {
	return Policy{Mode: AdminIssued, Admin: admin}
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	if p.Mode == AdminIssued && p.Admin.IsZero() {
		return fmt.Errorf("admin-issued mode requires an admin identity")
	}
	return nil
}

// Creator returns the identity that will own a record created by caller.
// In admin-issued mode only the admin may create.
func (p Policy) Creator(caller ir.Identity) (ir.Identity, error) {
	switch p.Mode {
	case AdminIssued:
		if err := Authorize(caller, p.Admin); err != nil {
			return ir.Identity{}, err
		}
		return p.Admin, nil
	case SelfService, "":
		return caller, nil
	}
	return ir.Identity{}, fmt.Errorf("unknown ownership mode %q", p.Mode)
}

// OwnerFor returns the identity that owns records created by caller
// without checking that caller may create. Clients use it to derive the
// address of a record before submitting the create.
func (p Policy) OwnerFor(caller ir.Identity) ir.Identity {
	if p.Mode == AdminIssued {
		return p.Admin
	}
	return caller
}

// CheckPayer verifies that payer may fund a record created by caller.
// Self-service requires the caller to pay for its own storage.
func (p Policy) CheckPayer(caller, payer ir.Identity) error {
	if p.Mode == AdminIssued {
		return nil
	}
	if caller != payer {
		return &ir.Error{
			Code:    ir.CodeUnauthorized,
			Message: "self-service records must be paid for by their owner",
		}
	}
	return nil
}

// Authorize succeeds iff the validated caller identity is the owner.
func Authorize(caller, owner ir.Identity) error {
	if caller.IsZero() || caller != owner {
		return ir.ErrUnauthorized
	}
	return nil
}
