// Package kvstore provides a Badger-backed host.AddressSpace.
//
// Keys:
//
//	acct/<32-byte address>  -> u64 lamports (little endian) + account data
//	log/<u64 seq, big endian> -> JSON log entry
//	meta/seq                -> last assigned seq
//
// Big-endian sequence keys make iteration order equal Seq order. With no
// data directory the store runs fully in memory, which is what the scenario
// harness uses.
package kvstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
)

var (
	prefixAccount = []byte("acct/")
	prefixLog     = []byte("log/")
	keySeq        = []byte("meta/seq")
)

// DefaultGCInterval is how often value-log GC runs for disk-backed stores.
const DefaultGCInterval = 5 * time.Minute

// Store is a Badger address space.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// seqMu is held from Append until Commit or Rollback, so log sequence
	// numbers are assigned and committed in order.
	seqMu   sync.Mutex
	lastSeq int64

	gcInterval time.Duration
	gcStop     chan struct{}
	gcWg       sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for badger's internal messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithGCInterval sets the value-log GC interval. Zero disables GC.
func WithGCInterval(d time.Duration) Option {
	return func(s *Store) { s.gcInterval = d }
}

// Open opens a store in dir, creating it if needed. An empty dir opens an
// in-memory store.
func Open(dir string, opts ...Option) (*Store, error) {
	s := &Store{gcInterval: DefaultGCInterval}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var bopts badger.Options
	if dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
		s.gcInterval = 0
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		bopts = badger.DefaultOptions(dir)
	}
	bopts = bopts.
		WithLogger(newBadgerLogger(s.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	s.db = db

	if err := s.loadSeq(); err != nil {
		db.Close()
		return nil, err
	}
	if s.gcInterval > 0 {
		s.gcStop = make(chan struct{})
		s.gcWg.Add(1)
		go s.runGC()
	}
	return s, nil
}

// OpenInMemory opens an empty in-memory store.
func OpenInMemory() (*Store, error) {
	return Open("")
}

func (s *Store) loadSeq() error {
	return s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(keySeq)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load seq: %w", err)
		}
		return item.Value(func(v []byte) error {
			if len(v) != 8 {
				return fmt.Errorf("load seq: corrupt value of %d bytes", len(v))
			}
			s.lastSeq = int64(binary.BigEndian.Uint64(v))
			return nil
		})
	})
}

func (s *Store) runGC() {
	defer s.gcWg.Done()
	t := time.NewTicker(s.gcInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			for {
				err := s.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					s.logger.Warn("value log GC failed", "component", "kvstore", "error", err)
				}
				break
			}
		case <-s.gcStop:
			return
		}
	}
}

// Close stops GC and closes the database.
func (s *Store) Close() error {
	if s.gcStop != nil {
		close(s.gcStop)
		s.gcWg.Wait()
		s.gcStop = nil
	}
	return s.db.Close()
}

// Begin opens a read-write transaction.
func (s *Store) Begin(ctx context.Context) (host.Txn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &txn{store: s, tx: s.db.NewTransaction(true)}, nil
}

// Scan iterates accounts in address order.
func (s *Store) Scan(ctx context.Context, fn func(addr ir.Address, acct host.Account) error) error {
	return s.db.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.IteratorOptions{Prefix: prefixAccount, PrefetchValues: true, PrefetchSize: 64})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var addr ir.Address
			copy(addr[:], item.Key()[len(prefixAccount):])
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			acct, err := decodeAccount(raw)
			if err != nil {
				return fmt.Errorf("account %s: %w", addr, err)
			}
			if err := fn(addr, acct); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadLog returns log entries after afterSeq in Seq order. The result is
// never nil.
func (s *Store) ReadLog(ctx context.Context, afterSeq int64, limit int) ([]ir.LogEntry, error) {
	if afterSeq < 0 {
		afterSeq = 0
	}
	out := []ir.LogEntry{}
	err := s.db.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.IteratorOptions{Prefix: prefixLog, PrefetchValues: true, PrefetchSize: 64})
		defer it.Close()
		for it.Seek(logKey(afterSeq + 1)); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(out) >= limit {
				return nil
			}
			var entry ir.LogEntry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &entry)
			}); err != nil {
				return fmt.Errorf("decode log entry: %w", err)
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type txn struct {
	store    *Store
	tx       *badger.Txn
	seqHeld  bool
	nextSeq  int64
	finished bool
}

func (t *txn) validate() error {
	if t.finished {
		return errors.New("transaction already finished")
	}
	return nil
}

func (t *txn) Get(ctx context.Context, addr ir.Address) (*host.Account, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	item, err := t.tx.Get(accountKey(addr))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", addr.Short(), err)
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	acct, err := decodeAccount(raw)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	return &acct, nil
}

func (t *txn) Put(ctx context.Context, addr ir.Address, acct host.Account) error {
	if err := t.validate(); err != nil {
		return err
	}
	return t.tx.Set(accountKey(addr), encodeAccount(acct))
}

func (t *txn) Delete(ctx context.Context, addr ir.Address) error {
	if err := t.validate(); err != nil {
		return err
	}
	return t.tx.Delete(accountKey(addr))
}

func (t *txn) Append(ctx context.Context, entry *ir.LogEntry) error {
	if err := t.validate(); err != nil {
		return err
	}
	if !t.seqHeld {
		t.store.seqMu.Lock()
		t.seqHeld = true
		t.nextSeq = t.store.lastSeq
	}
	t.nextSeq++
	entry.Seq = t.nextSeq

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode log entry: %w", err)
	}
	if err := t.tx.Set(logKey(entry.Seq), data); err != nil {
		return err
	}
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(entry.Seq))
	return t.tx.Set(keySeq, seq[:])
}

func (t *txn) Commit() error {
	if t.finished {
		return nil
	}
	defer t.release()
	t.finished = true
	if err := t.tx.Commit(); err != nil {
		return err
	}
	if t.seqHeld {
		t.store.lastSeq = t.nextSeq
	}
	return nil
}

func (t *txn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.tx.Discard()
	t.release()
	return nil
}

func (t *txn) release() {
	if t.seqHeld {
		t.seqHeld = false
		t.store.seqMu.Unlock()
	}
}

func accountKey(addr ir.Address) []byte {
	return append(append([]byte(nil), prefixAccount...), addr[:]...)
}

func logKey(seq int64) []byte {
	key := make([]byte, len(prefixLog)+8)
	copy(key, prefixLog)
	binary.BigEndian.PutUint64(key[len(prefixLog):], uint64(seq))
	return key
}

func encodeAccount(acct host.Account) []byte {
	buf := make([]byte, 8+len(acct.Data))
	binary.LittleEndian.PutUint64(buf, acct.Lamports)
	copy(buf[8:], acct.Data)
	return buf
}

func decodeAccount(raw []byte) (host.Account, error) {
	if len(raw) < 8 {
		return host.Account{}, fmt.Errorf("corrupt account value of %d bytes", len(raw))
	}
	return host.Account{
		Lamports: binary.LittleEndian.Uint64(raw[:8]),
		Data:     append([]byte(nil), raw[8:]...),
	}, nil
}
