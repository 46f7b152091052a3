package host

import (
	"context"

	"github.com/roach88/tallybook/internal/ir"
)

// Account is the content of one address: a lamport balance and opaque data.
type Account struct {
	Lamports uint64
	Data     []byte
}

// AddressSpace is the durable map from address to account, plus the
// transaction log. Implementations: store (SQLite) and kvstore (Badger).
type AddressSpace interface {
	// Begin opens a read-write transaction.
	Begin(ctx context.Context) (Txn, error)

	// Scan calls fn for every account in address order. Returning an error
	// from fn stops the scan and returns that error.
	Scan(ctx context.Context, fn func(addr ir.Address, acct Account) error) error

	// ReadLog returns up to limit log entries with Seq > afterSeq, in Seq
	// order. limit <= 0 means no limit.
	ReadLog(ctx context.Context, afterSeq int64, limit int) ([]ir.LogEntry, error)

	Close() error
}

// Txn is one atomic unit of account mutations. Nothing is visible to other
// transactions until Commit returns nil.
type Txn interface {
	// Get returns the account at addr, or nil when the address is empty.
	Get(ctx context.Context, addr ir.Address) (*Account, error)
	Put(ctx context.Context, addr ir.Address, acct Account) error
	Delete(ctx context.Context, addr ir.Address) error

	// Append adds entry to the log and assigns entry.Seq.
	Append(ctx context.Context, entry *ir.LogEntry) error

	Commit() error

	// Rollback discards the transaction. It is a no-op after Commit.
	Rollback() error
}
