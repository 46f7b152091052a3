// Package host simulates the ledger runtime the record programs run on.
//
// The runtime owns everything the record core treats as external: it
// verifies signed proofs, serializes instructions that share an address,
// supplies one trusted clock reading per instruction, charges and refunds
// storage deposits, and commits each instruction atomically together with
// its transaction log entry.
//
// Storage is pluggable through AddressSpace. The store package provides a
// SQLite implementation and kvstore a Badger one.
//
// Instruction lifecycle:
//
//	Invoke
//	  -> verify proofs            (ErrInvalidProof)
//	  -> lock accounts + wallets  (striped, ascending order)
//	  -> clock.Now()              (once)
//	  -> Begin
//	  -> handler(Frame)           (Init / Write / Close)
//	  -> Append log entry
//	  -> Commit                   (any error before this rolls back)
package host
