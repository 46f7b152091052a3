// Package record implements create, update and delete over addressed
// records, once, for every record kind.
//
// Each kind (Todo, Vote, Receipt) is a Kind[F, P] descriptor: F is the field
// set stored after the owner, P the sparse patch accepted by Update. The
// descriptor supplies creation defaults, field budgets and patch
// application; the transition functions in this package supply everything
// else.
//
// # Transitions
//
// Create, Update and Delete are pure: they take the current snapshot (nil
// when the address is empty) and return the next snapshot or an error. They
// never touch storage and never read a clock. Every mutating transition runs
// the same ordered pipeline:
//
//	existence check → authorization → field budgets → apply → timestamp
//
// All validation happens before the first write to the returned snapshot,
// so a failed transition leaves the caller's snapshot untouched.
//
// # Layout
//
// Encode and Decode map records to a fixed-capacity byte layout: an 8-byte
// discriminator, the 32-byte owner, the kind's fields with strings
// preallocated to their full budget, then created_at and modified_at.
// Oversized input is rejected, never truncated.
package record
