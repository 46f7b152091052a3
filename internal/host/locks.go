package host

import (
	"sort"
	"sync"

	"github.com/roach88/tallybook/internal/ir"
)

const lockStripes = 256

// lockTable serializes instructions that share an address. Addresses map to
// stripes by their first byte; stripes are always taken in ascending order,
// so two instructions can never wait on each other.
type lockTable struct {
	stripes [lockStripes]sync.Mutex
}

// acquire locks every stripe covering addrs and returns the release func.
func (l *lockTable) acquire(addrs []ir.Address) func() {
	var seen [lockStripes]bool
	idx := make([]int, 0, len(addrs))
	for _, a := range addrs {
		i := int(a[0])
		if !seen[i] {
			seen[i] = true
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	for _, i := range idx {
		l.stripes[i].Lock()
	}
	return func() {
		for j := len(idx) - 1; j >= 0; j-- {
			l.stripes[idx[j]].Unlock()
		}
	}
}
