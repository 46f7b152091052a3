package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the argument types recorded in the
// transaction log. Only Text, Int, Bool, List and Object implement it.
// There is no float type.
type Value interface {
	irValue()
}

// Text is a string value.
type Text string

func (Text) irValue() {}

// Int is an integer value. Counts and lamport amounts fit in int64 for any
// realistic ledger; Uint converts with a range check.
type Int int64

func (Int) irValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) irValue() {}

// List is an ordered sequence of values.
type List []Value

func (List) irValue() {}

// Object maps string keys to values. Use SortedKeys for deterministic
// iteration.
type Object map[string]Value

func (Object) irValue() {}

// Uint converts an unsigned amount to Int.
func Uint(n uint64) (Int, error) {
	if n > 1<<63-1 {
		return 0, fmt.Errorf("value %d exceeds int64 range", n)
	}
	return Int(n), nil
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's string comparison uses UTF-8, which orders some keys differently.
func (obj Object) SortedKeys() []string {
	return sortedKeys(obj)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// MarshalJSON encodes the object canonically.
func (obj Object) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(obj)
}

// UnmarshalJSON decodes an object, rejecting floats and nulls.
func (obj *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := make(Object, len(raw))
	for k, v := range raw {
		val, err := ToValue(v)
		if err != nil {
			return fmt.Errorf("object[%q]: %w", k, err)
		}
		out[k] = val
	}
	*obj = out
	return nil
}

// ToValue converts a decoded Go value into a Value. YAML and JSON decoders
// both produce inputs this accepts.
func ToValue(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden")
	case Value:
		return val, nil
	case string:
		return Text(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		n, err := Uint(val)
		if err != nil {
			return nil, err
		}
		return n, nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats are forbidden: %s", val)
		}
		return Int(n), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden: %v", val)
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			item, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			item, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = item
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
