package record

import (
	"encoding/binary"

	"github.com/roach88/tallybook/internal/ir"
)

// Sizes of the fixed parts of every record.
const (
	DiscriminatorSize = 8
	headerSize        = DiscriminatorSize + 32 // discriminator + owner
	trailerSize       = 16                     // created_at + modified_at
)

// StringSpace is the bytes reserved for a string with the given budget.
func StringSpace(budget int) int { return 4 + budget }

type encoder struct {
	buf []byte
	off int
}

func newEncoder(size int) *encoder {
	return &encoder{buf: make([]byte, size)}
}

func (e *encoder) raw(b []byte) {
	copy(e.buf[e.off:], b)
	e.off += len(b)
}

func (e *encoder) u8(v uint8) {
	e.buf[e.off] = v
	e.off++
}

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) u64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[e.off:], v)
	e.off += 8
}

func (e *encoder) i64(v int64) { e.u64(uint64(v)) }

// str writes a length-prefixed string into a region sized for budget.
// Callers validate the budget first; the zero padding stays in place.
func (e *encoder) str(s string, budget int) {
	binary.LittleEndian.PutUint32(e.buf[e.off:], uint32(len(s)))
	copy(e.buf[e.off+4:], s)
	e.off += StringSpace(budget)
}

type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.off+n > len(d.buf) {
		d.err = ir.Corrupt("record truncated at offset %d", d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) bool() bool {
	switch v := d.u8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if d.err == nil {
			d.err = ir.Corrupt("invalid bool byte %d", v)
		}
		return false
	}
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) i64() int64 { return int64(d.u64()) }

func (d *decoder) str(field string, budget int) string {
	region := d.take(StringSpace(budget))
	if region == nil {
		return ""
	}
	n := int(binary.LittleEndian.Uint32(region))
	if n > budget {
		d.err = ir.Corrupt("%s length %d exceeds budget %d", field, n, budget)
		return ""
	}
	return string(region[4 : 4+n])
}

// checkString validates a string against its byte budget.
func checkString(field, s string, budget int) error {
	if len(s) > budget {
		return ir.FieldTooLong(field, len(s), budget)
	}
	return nil
}
