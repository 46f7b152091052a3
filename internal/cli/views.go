package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/tallybook/internal/client"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/record"
)

// View types are the data payloads of command output. JSON uses the struct
// tags; text mode calls writeText.

type identityView struct {
	Identity ir.Identity `json:"identity"`
	KeyFile  string      `json:"key_file"`
}

func (v identityView) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s (%s)\n", v.Identity, v.KeyFile)
	return err
}

type balanceView struct {
	Identity ir.Identity `json:"identity"`
	Lamports uint64      `json:"lamports"`
}

func (v balanceView) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %d lamports\n", v.Identity, v.Lamports)
	return err
}

type addressView struct {
	Address ir.Address `json:"address"`
}

func (v addressView) writeText(w io.Writer) error {
	_, err := fmt.Fprintln(w, v.Address)
	return err
}

type todoView struct {
	Address     ir.Address  `json:"address"`
	Owner       ir.Identity `json:"owner"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Active      bool        `json:"active"`
	CreatedAt   int64       `json:"created_at"`
	ModifiedAt  int64       `json:"modified_at"`
}

func newTodoView(addr ir.Address, rec *client.TodoRecord) todoView {
	return todoView{
		Address:     addr,
		Owner:       rec.Owner,
		Title:       rec.Fields.Title,
		Description: rec.Fields.Description,
		Active:      rec.Fields.Active,
		CreatedAt:   int64(rec.CreatedAt),
		ModifiedAt:  int64(rec.ModifiedAt),
	}
}

func (v todoView) writeText(w io.Writer) error {
	status := "active"
	if !v.Active {
		status = "done"
	}
	fmt.Fprintf(w, "%s [%s]\n", v.Title, status)
	if v.Description != "" {
		fmt.Fprintf(w, "  %s\n", v.Description)
	}
	return writeFields(w, [][2]string{
		{"address", v.Address.String()},
		{"owner", v.Owner.String()},
		{"created", formatTime(v.CreatedAt)},
		{"modified", formatTime(v.ModifiedAt)},
	})
}

type voteView struct {
	Address    ir.Address  `json:"address"`
	Owner      ir.Identity `json:"owner"`
	Name       string      `json:"name"`
	Count      uint64      `json:"count"`
	CreatedAt  int64       `json:"created_at"`
	ModifiedAt int64       `json:"modified_at"`

	// HasVoted is set by vote show for the signing key.
	HasVoted *bool `json:"has_voted,omitempty"`
}

func newVoteView(addr ir.Address, rec *client.VoteRecord) voteView {
	return voteView{
		Address:    addr,
		Owner:      rec.Owner,
		Name:       rec.Fields.Name,
		Count:      rec.Fields.Count,
		CreatedAt:  int64(rec.CreatedAt),
		ModifiedAt: int64(rec.ModifiedAt),
	}
}

func (v voteView) writeText(w io.Writer) error {
	fmt.Fprintf(w, "%s: %d votes\n", v.Name, v.Count)
	fields := make([][2]string, 0, 5)
	if v.HasVoted != nil {
		fields = append(fields, [2]string{"voted", fmt.Sprint(*v.HasVoted)})
	}
	fields = append(fields,
		[2]string{"address", v.Address.String()},
		[2]string{"owner", v.Owner.String()},
		[2]string{"created", formatTime(v.CreatedAt)},
		[2]string{"modified", formatTime(v.ModifiedAt)},
	)
	return writeFields(w, fields)
}

type todoListView struct {
	Owner ir.Identity `json:"owner"`
	Todos []todoView  `json:"todos"`
}

func newTodoListView(owner ir.Identity, items []client.Listed[record.Todo]) todoListView {
	v := todoListView{Owner: owner, Todos: make([]todoView, 0, len(items))}
	for _, it := range items {
		v.Todos = append(v.Todos, newTodoView(it.Address, it.Record))
	}
	return v
}

func (v todoListView) writeText(w io.Writer) error {
	if len(v.Todos) == 0 {
		_, err := fmt.Fprintln(w, "No todos.")
		return err
	}
	for _, t := range v.Todos {
		mark := " "
		if !t.Active {
			mark = "x"
		}
		if _, err := fmt.Fprintf(w, "[%s] %s  %s\n", mark, t.Title, t.Address.Short()); err != nil {
			return err
		}
	}
	return nil
}

type voteListView struct {
	Owner ir.Identity `json:"owner"`
	Votes []voteView  `json:"votes"`
}

func newVoteListView(owner ir.Identity, items []client.Listed[record.Vote]) voteListView {
	v := voteListView{Owner: owner, Votes: make([]voteView, 0, len(items))}
	for _, it := range items {
		v.Votes = append(v.Votes, newVoteView(it.Address, it.Record))
	}
	return v
}

func (v voteListView) writeText(w io.Writer) error {
	if len(v.Votes) == 0 {
		_, err := fmt.Fprintln(w, "No votes.")
		return err
	}
	for _, vote := range v.Votes {
		if _, err := fmt.Fprintf(w, "%6d  %s  %s\n", vote.Count, vote.Name, vote.Address.Short()); err != nil {
			return err
		}
	}
	return nil
}

type logView struct {
	Entries []ir.LogEntry `json:"entries"`
}

func (v logView) writeText(w io.Writer) error {
	if len(v.Entries) == 0 {
		_, err := fmt.Fprintln(w, "No transactions.")
		return err
	}
	for _, e := range v.Entries {
		signers := make([]string, len(e.Signers))
		for j, s := range e.Signers {
			signers[j] = ir.WalletAddress(s).Short()
		}
		_, err := fmt.Fprintf(w, "%4d  %s  %s.%s  %s  signers=[%s]\n",
			e.Seq, formatTime(int64(e.Timestamp)), e.Program, e.Instruction, e.TxID,
			strings.Join(signers, ","))
		if err != nil {
			return err
		}
	}
	return nil
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
