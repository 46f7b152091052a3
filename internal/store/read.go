package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
)

// Scan calls fn for every account, ordered by address (memcmp).
func (s *Store) Scan(ctx context.Context, fn func(addr ir.Address, acct host.Account) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, lamports, data
		FROM accounts
		ORDER BY address ASC
	`)
	if err != nil {
		return fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	// Buffer the rows first: fn may call back into the store, and the
	// single pooled connection is busy until rows is closed.
	type row struct {
		addr ir.Address
		acct host.Account
	}
	var all []row
	for rows.Next() {
		var (
			raw      []byte
			lamports int64
			data     []byte
		)
		if err := rows.Scan(&raw, &lamports, &data); err != nil {
			return fmt.Errorf("scan account: %w", err)
		}
		if len(raw) != len(ir.Address{}) {
			return fmt.Errorf("scan account: address is %d bytes", len(raw))
		}
		var r row
		copy(r.addr[:], raw)
		r.acct = host.Account{Lamports: uint64(lamports), Data: data}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate accounts: %w", err)
	}
	rows.Close()

	for _, r := range all {
		if err := fn(r.addr, r.acct); err != nil {
			return err
		}
	}
	return nil
}

// ReadLog returns up to limit entries with seq > afterSeq, ordered by seq.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ReadLog(ctx context.Context, afterSeq int64, limit int) ([]ir.LogEntry, error) {
	query := `
		SELECT seq, tx_id, program, instruction, accounts, signers, args, timestamp
		FROM txn_log
		WHERE seq > ?
		ORDER BY seq ASC
	`
	args := []any{afterSeq}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	entries := []ir.LogEntry{}
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return entries, nil
}

// LastSeq returns the highest committed log seq, or 0 for an empty log.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM txn_log`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func scanLogEntry(rows *sql.Rows) (ir.LogEntry, error) {
	var (
		entry     ir.LogEntry
		accounts  string
		signers   string
		args      string
		timestamp int64
	)
	if err := rows.Scan(
		&entry.Seq,
		&entry.TxID,
		&entry.Program,
		&entry.Instruction,
		&accounts,
		&signers,
		&args,
		&timestamp,
	); err != nil {
		return ir.LogEntry{}, fmt.Errorf("scan log entry: %w", err)
	}

	var err error
	if entry.Accounts, err = unmarshalAddresses(accounts); err != nil {
		return ir.LogEntry{}, err
	}
	if entry.Signers, err = unmarshalSigners(signers); err != nil {
		return ir.LogEntry{}, err
	}
	if entry.Args, err = unmarshalArgs(args); err != nil {
		return ir.LogEntry{}, err
	}
	entry.Timestamp = ir.Timestamp(timestamp)
	return entry, nil
}
