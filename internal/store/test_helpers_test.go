package store

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testAddress returns a deterministic address for name.
func testAddress(name string) ir.Address {
	return ir.Address(sha256.Sum256([]byte(name)))
}

// putAccount commits a single account.
func putAccount(t *testing.T, s *Store, addr ir.Address, acct host.Account) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	defer tx.Rollback()
	if err := tx.Put(ctx, addr, acct); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
}

// appendEntry commits a single log entry and returns its seq.
func appendEntry(t *testing.T, s *Store, entry ir.LogEntry) int64 {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	defer tx.Rollback()
	if err := tx.Append(ctx, &entry); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
	return entry.Seq
}
