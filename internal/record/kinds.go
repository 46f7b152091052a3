package record

// Byte budgets of bounded fields.
const (
	MaxTitleLen       = 50
	MaxDescriptionLen = 200
	MaxNameLen        = 50
)

// Todo is the field set of a todo record.
type Todo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// TodoPatch is a sparse todo update; nil fields are left unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	Active      *bool
}

// Vote is the field set of a vote record.
type Vote struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// VotePatch is a sparse vote update. There is deliberately no count field:
// the counter only moves through a cast.
type VotePatch struct {
	Name *string
}

// Receipt is the empty field set of a vote receipt. The receipt's owner is
// the voter; its existence is the only fact it records.
type Receipt struct{}

// NoPatch is the patch type of kinds that are never updated.
type NoPatch struct{}

// Record kind descriptors.
var (
	TodoKind    Kind[Todo, TodoPatch]  = todoKind{}
	VoteKind    Kind[Vote, VotePatch]  = voteKind{}
	ReceiptKind Kind[Receipt, NoPatch] = receiptKind{}
)

type todoKind struct{}

func (todoKind) Name() string { return "TodoRecord" }

func (todoKind) Init(f Todo) Todo {
	f.Active = true
	return f
}

func (todoKind) ValidateFields(f Todo) error {
	if err := checkString("title", f.Title, MaxTitleLen); err != nil {
		return err
	}
	return checkString("description", f.Description, MaxDescriptionLen)
}

func (todoKind) ValidatePatch(p TodoPatch) error {
	if p.Title != nil {
		if err := checkString("title", *p.Title, MaxTitleLen); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := checkString("description", *p.Description, MaxDescriptionLen); err != nil {
			return err
		}
	}
	return nil
}

func (todoKind) ApplyPatch(f Todo, p TodoPatch) Todo {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Active != nil {
		f.Active = *p.Active
	}
	return f
}

func (todoKind) fieldsSize() int {
	return StringSpace(MaxTitleLen) + StringSpace(MaxDescriptionLen) + 1
}

func (todoKind) encodeFields(e *encoder, f Todo) {
	e.str(f.Title, MaxTitleLen)
	e.str(f.Description, MaxDescriptionLen)
	e.bool(f.Active)
}

func (todoKind) decodeFields(d *decoder) Todo {
	return Todo{
		Title:       d.str("title", MaxTitleLen),
		Description: d.str("description", MaxDescriptionLen),
		Active:      d.bool(),
	}
}

type voteKind struct{}

func (voteKind) Name() string { return "VoteRecord" }

func (voteKind) Init(f Vote) Vote {
	f.Count = 0
	return f
}

func (voteKind) ValidateFields(f Vote) error {
	return checkString("name", f.Name, MaxNameLen)
}

func (voteKind) ValidatePatch(p VotePatch) error {
	if p.Name != nil {
		return checkString("name", *p.Name, MaxNameLen)
	}
	return nil
}

func (voteKind) ApplyPatch(f Vote, p VotePatch) Vote {
	if p.Name != nil {
		f.Name = *p.Name
	}
	return f
}

func (voteKind) fieldsSize() int { return StringSpace(MaxNameLen) + 8 }

func (voteKind) encodeFields(e *encoder, f Vote) {
	e.str(f.Name, MaxNameLen)
	e.u64(f.Count)
}

func (voteKind) decodeFields(d *decoder) Vote {
	return Vote{Name: d.str("name", MaxNameLen), Count: d.u64()}
}

type receiptKind struct{}

func (receiptKind) Name() string { return "VoteReceipt" }
func (receiptKind) Init(f Receipt) Receipt { return f }
func (receiptKind) ValidateFields(Receipt) error { return nil }
func (receiptKind) ValidatePatch(NoPatch) error { return nil }
func (receiptKind) ApplyPatch(f Receipt, _ NoPatch) Receipt { return f }
func (receiptKind) fieldsSize() int { return 0 }
func (receiptKind) encodeFields(*encoder, Receipt) {}
func (receiptKind) decodeFields(*decoder) Receipt { return Receipt{} }
