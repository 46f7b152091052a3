package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
)

// txn is one SQL transaction. Rollback after Commit is a no-op, so callers
// can always defer it.
type txn struct {
	tx *sql.Tx
}

func (t *txn) Get(ctx context.Context, addr ir.Address) (*host.Account, error) {
	var (
		lamports int64
		data     []byte
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT lamports, data FROM accounts WHERE address = ?
	`, addr[:]).Scan(&lamports, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", addr.Short(), err)
	}
	return &host.Account{Lamports: uint64(lamports), Data: data}, nil
}

// Put upserts the account. The uint64 balance round-trips through SQLite's
// signed INTEGER unchanged.
func (t *txn) Put(ctx context.Context, addr ir.Address, acct host.Account) error {
	data := acct.Data
	if data == nil {
		data = []byte{}
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO accounts (address, lamports, data)
		VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET lamports = excluded.lamports, data = excluded.data
	`, addr[:], int64(acct.Lamports), data)
	if err != nil {
		return fmt.Errorf("put account %s: %w", addr.Short(), err)
	}
	return nil
}

func (t *txn) Delete(ctx context.Context, addr ir.Address) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM accounts WHERE address = ?`, addr[:]); err != nil {
		return fmt.Errorf("delete account %s: %w", addr.Short(), err)
	}
	return nil
}

// Append inserts the log entry. Seq comes from the AUTOINCREMENT key, so it
// is strictly increasing and never reused.
func (t *txn) Append(ctx context.Context, entry *ir.LogEntry) error {
	accounts, err := marshalAddresses(entry.Accounts)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	signers, err := marshalSigners(entry.Signers)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	args, err := marshalArgs(entry.Args)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO txn_log
		(tx_id, program, instruction, accounts, signers, args, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.TxID,
		entry.Program,
		entry.Instruction,
		accounts,
		signers,
		args,
		int64(entry.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("append log: last insert id: %w", err)
	}
	entry.Seq = seq
	return nil
}

func (t *txn) Commit() error {
	if err := t.tx.Commit(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (t *txn) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
