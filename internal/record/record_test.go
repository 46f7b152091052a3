package record

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tallybook/internal/ir"
)

func id(name string) ir.Identity {
	return ir.Identity(sha256.Sum256([]byte(name)))
}

func ptr[T any](v T) *T { return &v }

func TestSpace(t *testing.T) {
	assert.Equal(t, 315, Space(TodoKind))
	assert.Equal(t, 118, Space(VoteKind))
	assert.Equal(t, 56, Space(ReceiptKind))
}

func TestCreateTodo(t *testing.T) {
	alice := id("alice")
	rec, err := Create(TodoKind, nil, alice, Todo{Title: "buy milk", Description: "2 litres"}, 100)
	require.NoError(t, err)

	assert.Equal(t, alice, rec.Owner)
	assert.Equal(t, "buy milk", rec.Fields.Title)
	assert.Equal(t, "2 litres", rec.Fields.Description)
	assert.True(t, rec.Fields.Active)
	assert.Equal(t, ir.Timestamp(100), rec.CreatedAt)
	assert.Equal(t, rec.CreatedAt, rec.ModifiedAt)
}

func TestCreateVoteStartsAtZero(t *testing.T) {
	rec, err := Create(VoteKind, nil, id("admin"), Vote{Name: "lunch", Count: 42}, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rec.Fields.Count)
	assert.Equal(t, rec.CreatedAt, rec.ModifiedAt)
}

func TestCreateOccupiedAddress(t *testing.T) {
	alice := id("alice")
	first, err := Create(TodoKind, nil, alice, Todo{Title: "t"}, 1)
	require.NoError(t, err)
	before := Encode(TodoKind, first)

	_, err = Create(TodoKind, first, alice, Todo{Title: "t", Description: "other"}, 2)
	assert.ErrorIs(t, err, ir.ErrAlreadyExists)
	assert.Equal(t, before, Encode(TodoKind, first), "existing record must be unchanged")
}

func TestCreateFieldTooLong(t *testing.T) {
	tests := []struct {
		name   string
		fields Todo
		field  string
	}{
		{"title", Todo{Title: strings.Repeat("x", MaxTitleLen+1)}, "title"},
		{"description", Todo{Title: "ok", Description: strings.Repeat("x", MaxDescriptionLen+1)}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Create(TodoKind, nil, id("alice"), tt.fields, 1)
			require.ErrorIs(t, err, ir.ErrFieldTooLong)
			assert.Nil(t, rec)

			var e *ir.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)
		})
	}

	_, err := Create(VoteKind, nil, id("admin"), Vote{Name: strings.Repeat("n", MaxNameLen+1)}, 1)
	assert.ErrorIs(t, err, ir.ErrFieldTooLong)
}

func TestCreateAtExactBudget(t *testing.T) {
	fields := Todo{
		Title:       strings.Repeat("t", MaxTitleLen),
		Description: strings.Repeat("d", MaxDescriptionLen),
	}
	rec, err := Create(TodoKind, nil, id("alice"), fields, 1)
	require.NoError(t, err)

	got, err := Decode(TodoKind, Encode(TodoKind, rec))
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestUpdateEmptyPatchOnlyBumpsTimestamp(t *testing.T) {
	alice := id("alice")
	cur, err := Create(TodoKind, nil, alice, Todo{Title: "t", Description: "d"}, 10)
	require.NoError(t, err)

	next, err := Update(TodoKind, cur, alice, TodoPatch{}, 20)
	require.NoError(t, err)

	assert.Equal(t, cur.Fields, next.Fields)
	assert.Equal(t, cur.Owner, next.Owner)
	assert.Equal(t, cur.CreatedAt, next.CreatedAt)
	assert.Equal(t, ir.Timestamp(20), next.ModifiedAt)
	assert.Equal(t, ir.Timestamp(10), cur.ModifiedAt, "input snapshot is not mutated")
}

func TestUpdateSparsePatch(t *testing.T) {
	alice := id("alice")
	cur, err := Create(TodoKind, nil, alice, Todo{Title: "t", Description: "d"}, 10)
	require.NoError(t, err)

	next, err := Update(TodoKind, cur, alice, TodoPatch{Active: ptr(false)}, 11)
	require.NoError(t, err)
	assert.Equal(t, Todo{Title: "t", Description: "d", Active: false}, next.Fields)

	next, err = Update(TodoKind, next, alice, TodoPatch{Title: ptr("renamed"), Description: ptr("")}, 12)
	require.NoError(t, err)
	assert.Equal(t, Todo{Title: "renamed", Description: "", Active: false}, next.Fields)
}

func TestUpdateNeverMovesModifiedBackwards(t *testing.T) {
	alice := id("alice")
	cur, err := Create(TodoKind, nil, alice, Todo{Title: "t"}, 50)
	require.NoError(t, err)

	next, err := Update(TodoKind, cur, alice, TodoPatch{}, 40)
	require.NoError(t, err)
	assert.Equal(t, ir.Timestamp(50), next.ModifiedAt)
}

func TestUpdateFailures(t *testing.T) {
	alice, bob := id("alice"), id("bob")
	cur, err := Create(TodoKind, nil, alice, Todo{Title: "t", Description: "d"}, 10)
	require.NoError(t, err)
	before := Encode(TodoKind, cur)

	_, err = Update(TodoKind, nil, alice, TodoPatch{}, 11)
	assert.ErrorIs(t, err, ir.ErrNotFound)

	_, err = Update(TodoKind, cur, bob, TodoPatch{Title: ptr("stolen")}, 11)
	assert.ErrorIs(t, err, ir.ErrUnauthorized)

	_, err = Update(TodoKind, cur, alice, TodoPatch{
		Title:       ptr("fine"),
		Description: ptr(strings.Repeat("x", MaxDescriptionLen+1)),
	}, 11)
	assert.ErrorIs(t, err, ir.ErrFieldTooLong)

	assert.Equal(t, before, Encode(TodoKind, cur), "failed updates leave the record byte-for-byte unchanged")
}

func TestUpdateAuthorizationBeforeBudget(t *testing.T) {
	cur, err := Create(TodoKind, nil, id("alice"), Todo{Title: "t"}, 1)
	require.NoError(t, err)

	_, err = Update(TodoKind, cur, id("bob"), TodoPatch{Title: ptr(strings.Repeat("x", 99))}, 2)
	assert.ErrorIs(t, err, ir.ErrUnauthorized)
}

func TestVotePatchNeverTouchesCount(t *testing.T) {
	admin := id("admin")
	cur, err := Create(VoteKind, nil, admin, Vote{Name: "lunch"}, 1)
	require.NoError(t, err)
	cur.Fields.Count = 3

	next, err := Update(VoteKind, cur, admin, VotePatch{Name: ptr("dinner")}, 2)
	require.NoError(t, err)
	assert.Equal(t, Vote{Name: "dinner", Count: 3}, next.Fields)
}

func TestDelete(t *testing.T) {
	alice, bob := id("alice"), id("bob")
	cur, err := Create(TodoKind, nil, alice, Todo{Title: "t"}, 1)
	require.NoError(t, err)

	_, err = Delete(TodoKind, nil, alice)
	assert.ErrorIs(t, err, ir.ErrNotFound)

	_, err = Delete(TodoKind, cur, bob)
	assert.ErrorIs(t, err, ir.ErrUnauthorized)

	refund, err := Delete(TodoKind, cur, alice)
	require.NoError(t, err)
	assert.Equal(t, alice, refund)
}

func TestEncodeDecodeLayout(t *testing.T) {
	alice := id("alice")
	rec := &Record[Vote]{Owner: alice, Fields: Vote{Name: "abc", Count: 9}, CreatedAt: 5, ModifiedAt: 6}
	data := Encode(VoteKind, rec)
	require.Len(t, data, Space(VoteKind))

	disc := ir.Discriminator("VoteRecord")
	assert.Equal(t, disc[:], data[:8])
	assert.Equal(t, alice[:], data[8:40])
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[40:44]))
	assert.Equal(t, "abc", string(data[44:47]))
	assert.Equal(t, make([]byte, MaxNameLen-3), data[47:94], "string region is zero padded")
	assert.Equal(t, uint64(9), binary.LittleEndian.Uint64(data[94:102]))

	got, err := Decode(VoteKind, data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	owner, ok := OwnerOf(data)
	require.True(t, ok)
	assert.Equal(t, alice, owner)
	assert.True(t, Is(VoteKind, data))
	assert.False(t, Is(TodoKind, data))
}

func TestDecodeCorrupt(t *testing.T) {
	rec, err := Create(TodoKind, nil, id("alice"), Todo{Title: "t"}, 1)
	require.NoError(t, err)
	data := Encode(TodoKind, rec)

	_, err = Decode(TodoKind, data[:len(data)-1])
	assert.ErrorIs(t, err, ir.ErrCorruptRecord)

	_, err = Decode(VoteKind, data)
	assert.ErrorIs(t, err, ir.ErrCorruptRecord, "wrong size for kind")

	wrongDisc := append([]byte(nil), data...)
	wrongDisc[0] ^= 0xff
	_, err = Decode(TodoKind, wrongDisc)
	assert.ErrorIs(t, err, ir.ErrCorruptRecord)

	badLen := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(badLen[40:], MaxTitleLen+1)
	_, err = Decode(TodoKind, badLen)
	assert.ErrorIs(t, err, ir.ErrCorruptRecord)

	badBool := append([]byte(nil), data...)
	badBool[40+StringSpace(MaxTitleLen)+StringSpace(MaxDescriptionLen)] = 2
	_, err = Decode(TodoKind, badBool)
	assert.ErrorIs(t, err, ir.ErrCorruptRecord)
}

func TestReceiptRecord(t *testing.T) {
	voter := id("voter")
	rec, err := Create(ReceiptKind, nil, voter, Receipt{}, 3)
	require.NoError(t, err)

	data := Encode(ReceiptKind, rec)
	got, err := Decode(ReceiptKind, data)
	require.NoError(t, err)
	assert.Equal(t, voter, got.Owner)
	assert.Equal(t, ir.Timestamp(3), got.CreatedAt)
}
