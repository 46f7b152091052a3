// Package ir provides the foundational value types for tallybook.
//
// All other internal packages import ir; ir imports nothing internal. It
// holds the identity and address types, the public address derivation
// function, record discriminators, host timestamps, and the canonical JSON
// encoding used for transaction log arguments and golden snapshots.
//
// Key design constraints:
//   - Address derivation is a public contract: any party holding only the
//     seed values can recompute an address without consulting storage
//   - Identities and addresses are fixed 32-byte values, hex in text form
//   - Timestamps come from the host clock, never from time.Now in core code
//   - NO float types in canonical JSON
package ir
