package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator generates predictable transaction IDs for tests.
//
// IDs are "<prefix>-000001", "<prefix>-000002", ... so the same scenario
// produces byte-identical transaction logs and golden snapshots.
//
// Thread-safety: SequenceGenerator is safe for concurrent use via internal
// mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix uses "tx".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "tx"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements host.TxIDGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%06d", g.prefix, g.n)
}

// Reset restarts the sequence at 1.
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
