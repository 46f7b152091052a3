package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/tallybook/internal/ir"
)

// marshalArgs converts instruction args to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalArgs(args ir.Object) (string, error) {
	if args == nil {
		args = ir.Object{}
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// marshalAddresses stores addresses as a canonical JSON array of hex strings.
func marshalAddresses(addrs []ir.Address) (string, error) {
	items := make([]any, len(addrs))
	for i, a := range addrs {
		items[i] = a
	}
	data, err := ir.MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("marshal accounts: %w", err)
	}
	return string(data), nil
}

func marshalSigners(ids []ir.Identity) (string, error) {
	items := make([]any, len(ids))
	for i, id := range ids {
		items[i] = id
	}
	data, err := ir.MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("marshal signers: %w", err)
	}
	return string(data), nil
}

// unmarshalArgs parses canonical JSON TEXT to an Object.
// Uses ir.Object.UnmarshalJSON which keeps integers exact via json.Number.
func unmarshalArgs(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	var obj ir.Object
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return obj, nil
}

func unmarshalAddresses(data string) ([]ir.Address, error) {
	var addrs []ir.Address
	if err := json.Unmarshal([]byte(data), &addrs); err != nil {
		return nil, fmt.Errorf("unmarshal accounts: %w", err)
	}
	return addrs, nil
}

func unmarshalSigners(data string) ([]ir.Identity, error) {
	var ids []ir.Identity
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal signers: %w", err)
	}
	return ids, nil
}
