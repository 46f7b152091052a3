// Package harness runs scripted record scenarios against the real todo and
// vote programs.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cast_once
//	description: "A second cast by the same voter is a duplicate"
//	identities: [alice, bob]
//	config:
//	  vote: { mode: admin-issued, admin: alice }
//	steps:
//	  - as: alice
//	    op: create_vote
//	    args: { name: Banana }
//	  - as: bob
//	    op: cast_vote
//	    owner: alice
//	    args: { name: Banana }
//	  - as: bob
//	    op: cast_vote
//	    owner: alice
//	    args: { name: Banana }
//	    expect: { error: DUPLICATE_VOTE }
//	assertions:
//	  - type: record
//	    kind: vote
//	    owner: alice
//	    name: Banana
//	    expect: { count: 1 }
//
// Every identity gets a key derived from its name (testutil.Key) and an
// airdrop of funds lamports before the first step. Steps address records
// by their seeds; owner defaults to the owner the program's policy assigns
// to the acting identity. A step without expect must succeed; expect.error
// names the error code the step must fail with (see program.ErrorCode).
//
// # Assertion Types
//
//   - record: the record exists and its fields match expect (subset match)
//   - absent: nothing is stored at the record's address
//   - receipt_count: how many of the scenario identities hold a receipt
//   - balance: an identity's wallet holds exactly lamports
//
// # Deterministic Testing
//
// Each run uses a fresh in-memory Badger address space, a
// testutil.DeterministicClock starting at testutil.DefaultEpoch and
// sequential transaction IDs, so the same scenario always produces the same
// step outcomes and transaction log. RunWithGolden snapshots both as
// canonical JSON.
package harness
