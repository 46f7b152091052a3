// Package receipt implements at-most-once side effects backed by the address
// space itself.
//
// A receipt is a zero-payload record at an address derived from a subject
// and an actor (ir.ReceiptAddress). Claiming the receipt is an ordinary
// record create: success authorizes the side effect, a collision denies it.
// Because uniqueness rides on address creation, the guarantee holds under
// exactly the atomicity the host already gives to creates.
package receipt

import (
	"errors"

	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/record"
)

// Claim returns the receipt actor holds after acting at time now. cur is the
// snapshot at the receipt address; an occupied address fails with denied.
func Claim(cur *record.Record[record.Receipt], actor ir.Identity, now ir.Timestamp, denied error) (*record.Record[record.Receipt], error) {
	rec, err := record.Create(record.ReceiptKind, cur, actor, record.Receipt{}, now)
	if errors.Is(err, ir.ErrAlreadyExists) {
		return nil, denied
	}
	return rec, err
}

// Guard claims the receipt and, only if that succeeds, runs effect. Neither
// result is returned unless both succeed, so the caller commits the receipt
// and the effect together or not at all.
func Guard[T any](cur *record.Record[record.Receipt], actor ir.Identity, now ir.Timestamp, denied error, effect func() (T, error)) (*record.Record[record.Receipt], T, error) {
	var zero T
	rec, err := Claim(cur, actor, now, denied)
	if err != nil {
		return nil, zero, err
	}
	out, err := effect()
	if err != nil {
		return nil, zero, err
	}
	return rec, out, nil
}
