package host

import "math"

const (
	// AccountStorageOverhead is charged per account on top of its data.
	AccountStorageOverhead = 128

	// DefaultLamportsPerByte is the default deposit rate per stored byte.
	DefaultLamportsPerByte = 6960
)

// Rent computes storage deposits.
type Rent struct {
	LamportsPerByte uint64
}

// DefaultRent returns the default deposit schedule.
func DefaultRent() Rent {
	return Rent{LamportsPerByte: DefaultLamportsPerByte}
}

// MinimumBalance is the deposit required to keep space bytes stored.
// It saturates instead of wrapping.
func (r Rent) MinimumBalance(space int) uint64 {
	n := uint64(space) + AccountStorageOverhead
	if r.LamportsPerByte != 0 && n > math.MaxUint64/r.LamportsPerByte {
		return math.MaxUint64
	}
	return n * r.LamportsPerByte
}
