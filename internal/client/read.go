package client

import (
	"context"

	"github.com/roach88/tallybook/internal/host"
	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/record"
)

// Listed is a record found by a scan, with its address.
type Listed[F any] struct {
	Address ir.Address
	Record  *record.Record[F]
}

func get[F, P any](ctx context.Context, c *Client, k record.Kind[F, P], addr ir.Address, op string) (*record.Record[F], error) {
	acct, err := c.reg.Runtime().Account(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ir.WithOp(ir.ErrNotFound, op, addr)
	}
	rec, err := record.Decode(k, acct.Data)
	if err != nil {
		return nil, ir.WithOp(err, op, addr)
	}
	return rec, nil
}

// list scans the address space for records of kind k owned by owner. The
// owner is compared on the raw bytes before decoding.
func list[F, P any](ctx context.Context, c *Client, k record.Kind[F, P], owner ir.Identity) ([]Listed[F], error) {
	var out []Listed[F]
	err := c.reg.Runtime().Scan(ctx, func(addr ir.Address, acct host.Account) error {
		if !record.Is(k, acct.Data) {
			return nil
		}
		if id, ok := record.OwnerOf(acct.Data); !ok || id != owner {
			return nil
		}
		rec, err := record.Decode(k, acct.Data)
		if err != nil {
			return ir.WithOp(err, "list", addr)
		}
		out = append(out, Listed[F]{Address: addr, Record: rec})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
