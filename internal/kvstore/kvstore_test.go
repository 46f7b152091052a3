package kvstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
)

func testAddress(name string) ir.Address {
	return ir.Address(sha256.Sum256([]byte(name)))
}

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func commit(t *testing.T, s *Store, fn func(tx host.Txn)) {
	t.Helper()
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()
	fn(tx)
	require.NoError(t, tx.Commit())
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	addr := testAddress("a")

	commit(t, s, func(tx host.Txn) {
		require.NoError(t, tx.Put(ctx, addr, host.Account{Lamports: math.MaxUint64, Data: []byte("hello")}))
	})

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	got, err := tx.Get(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(math.MaxUint64), got.Lamports)
	assert.Equal(t, []byte("hello"), got.Data)

	missing, err := tx.Get(ctx, testAddress("missing"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRollbackDiscards(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	addr := testAddress("a")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Put(ctx, addr, host.Account{Lamports: 1}))
	entry := ir.LogEntry{TxID: "tx-1", Program: "todo", Instruction: "create"}
	require.NoError(t, tx.Append(ctx, &entry))
	require.NoError(t, tx.Rollback())

	entries, err := s.ReadLog(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The seq released by the rollback is assigned again.
	commit(t, s, func(tx host.Txn) {
		e := ir.LogEntry{TxID: "tx-2", Program: "todo", Instruction: "create"}
		require.NoError(t, tx.Append(ctx, &e))
		assert.Equal(t, int64(1), e.Seq)
	})
}

func TestFinishedTxnRejectsWrites(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Error(t, tx.Put(ctx, testAddress("a"), host.Account{}))
	assert.NoError(t, tx.Rollback(), "rollback after commit is a no-op")
}

func TestDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	addr := testAddress("a")

	commit(t, s, func(tx host.Txn) {
		require.NoError(t, tx.Put(ctx, addr, host.Account{Lamports: 3}))
	})
	commit(t, s, func(tx host.Txn) {
		require.NoError(t, tx.Delete(ctx, addr))
	})

	count := 0
	require.NoError(t, s.Scan(ctx, func(ir.Address, host.Account) error {
		count++
		return nil
	}))
	assert.Zero(t, count)
}

func TestScanAddressOrder(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	commit(t, s, func(tx host.Txn) {
		for _, name := range []string{"c", "a", "e", "b", "d"} {
			require.NoError(t, tx.Put(ctx, testAddress(name), host.Account{}))
		}
	})

	var got []ir.Address
	require.NoError(t, s.Scan(ctx, func(addr ir.Address, _ host.Account) error {
		got = append(got, addr)
		return nil
	}))
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.Negative(t, bytes.Compare(got[i-1][:], got[i][:]))
	}

	stop := errors.New("stop")
	err := s.Scan(ctx, func(ir.Address, host.Account) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestReadLogAfterSeqAndLimit(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	alice := ir.Identity(testAddress("alice"))

	for _, id := range []string{"tx-1", "tx-2", "tx-3"} {
		commit(t, s, func(tx host.Txn) {
			e := ir.LogEntry{
				TxID:        id,
				Program:     "vote",
				Instruction: "cast",
				Accounts:    []ir.Address{testAddress("vote")},
				Signers:     []ir.Identity{alice},
				Args:        ir.Object{"name": ir.Text("Banana")},
				Timestamp:   100,
			}
			require.NoError(t, tx.Append(ctx, &e))
		})
	}

	all, err := s.ReadLog(ctx, -5, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Seq)
	assert.Equal(t, []ir.Identity{alice}, all[0].Signers)
	assert.Equal(t, ir.Text("Banana"), all[0].Args["name"])

	page, err := s.ReadLog(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "tx-2", page[0].TxID)

	none, err := s.ReadLog(ctx, 3, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSeqSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, WithGCInterval(0))
	require.NoError(t, err)
	commit(t, s, func(tx host.Txn) {
		e := ir.LogEntry{TxID: "tx-1", Program: "todo", Instruction: "create"}
		require.NoError(t, tx.Append(ctx, &e))
	})
	require.NoError(t, s.Close())

	s, err = Open(dir, WithGCInterval(0))
	require.NoError(t, err)
	defer s.Close()

	commit(t, s, func(tx host.Txn) {
		e := ir.LogEntry{TxID: "tx-2", Program: "todo", Instruction: "update"}
		require.NoError(t, tx.Append(ctx, &e))
		assert.Equal(t, int64(2), e.Seq)
	})
}

func TestBeginCanceledContext(t *testing.T) {
	s := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeAccountRejectsShortValue(t *testing.T) {
	_, err := decodeAccount([]byte{1, 2, 3})
	assert.Error(t, err)
}
