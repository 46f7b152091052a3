// Package client is the caller-side facade over the todo and vote programs.
//
// A Client acts as one identity: it derives record addresses from public
// seeds, signs a proof for every instruction it submits, and decodes
// records read back from the address space. There is no index; every read
// goes to a derived address or scans the address space.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/program"
	"github.com/roach88/tallybook/internal/proof"
)

// Client submits instructions as one identity.
type Client struct {
	reg   *program.Registry
	key   *proof.Key
	payer *proof.Key
	now   func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithPayer funds storage deposits from a different key. The payer signs
// every create alongside the acting key.
func WithPayer(k *proof.Key) Option {
	return func(c *Client) { c.payer = k }
}

// WithNow sets the clock used for proof issue times. Default: time.Now.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a client acting as key.
func New(reg *program.Registry, key *proof.Key, opts ...Option) *Client {
	c := &Client{reg: reg, key: key, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// As returns a copy of the client acting as key, with no separate payer.
func (c *Client) As(key *proof.Key) *Client {
	out := *c
	out.key = key
	out.payer = nil
	return &out
}

// Identity is the identity the client acts as.
func (c *Client) Identity() ir.Identity { return c.key.Identity() }

// TodoAddress is where a todo this client creates with title lives.
func (c *Client) TodoAddress(title string) ir.Address {
	return ir.TodoAddress(c.reg.Todo.Policy.OwnerFor(c.Identity()), title)
}

// VoteAddress is where a vote this client creates with name lives.
func (c *Client) VoteAddress(name string) ir.Address {
	return ir.VoteAddress(c.reg.Vote.Policy.OwnerFor(c.Identity()), name)
}

// ReceiptAddress is where this client's receipt for vote lives.
func (c *Client) ReceiptAddress(vote ir.Address) ir.Address {
	return ir.ReceiptAddress(vote, c.Identity())
}

// submit signs in with the acting key (and the payer, for creates) and runs
// it.
func (c *Client) submit(ctx context.Context, in host.Instruction, withPayer bool) (ir.LogEntry, error) {
	signers := []*proof.Key{c.key}
	if withPayer && c.payer != nil {
		if in.Args == nil {
			in.Args = ir.Object{}
		}
		in.Args[program.ArgPayer] = ir.Text(c.payer.Identity().String())
		if c.payer.Identity() != c.key.Identity() {
			signers = append(signers, c.payer)
		}
	}

	digest, err := in.Digest()
	if err != nil {
		return ir.LogEntry{}, err
	}
	now := c.now()
	for _, k := range signers {
		token, err := k.Sign(in.Audience(), digest, now)
		if err != nil {
			return ir.LogEntry{}, fmt.Errorf("sign %s: %w", in.Audience(), err)
		}
		in.Proofs = append(in.Proofs, token)
	}
	return c.reg.Submit(ctx, in)
}

func (c *Client) authority() ir.Text { return ir.Text(c.Identity().String()) }

// Airdrop funds the client's wallet from the development faucet.
func (c *Client) Airdrop(ctx context.Context, lamports uint64) error {
	_, err := c.reg.Runtime().Airdrop(ctx, c.Identity(), lamports)
	return err
}

// Balance returns the lamports in the client's wallet.
func (c *Client) Balance(ctx context.Context) (uint64, error) {
	return c.reg.Runtime().Balance(ctx, c.Identity())
}
