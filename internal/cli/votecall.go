package cli

import (
	"context"

	"github.com/roach88/tallybook/internal/client"
	"github.com/roach88/tallybook/internal/ir"
)

// voteCall is a client bound to one vote address.
type voteCall struct {
	client *client.Client
	addr   ir.Address
}

// show writes the vote, with the signing key's receipt status when
// withReceipt is set.
func (v *voteCall) show(ctx context.Context, out *OutputFormatter, withReceipt bool) error {
	rec, err := v.client.GetVote(ctx, v.addr)
	if err != nil {
		return out.Fail("get vote", err)
	}
	view := newVoteView(v.addr, rec)
	if withReceipt {
		voted, err := v.client.HasVoted(ctx, v.addr, v.client.Identity())
		if err != nil {
			return out.Fail("has voted", err)
		}
		view.HasVoted = &voted
	}
	return out.Success(view)
}
