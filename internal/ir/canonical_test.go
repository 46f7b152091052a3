package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lineSep = string(rune(0x2028))
	paraSep = string(rune(0x2029))
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"text", Text("hello"), `"hello"`},
		{"empty text", Text(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"timestamp", Timestamp(1700000000), "1700000000"},
		{"bool", Bool(true), "true"},
		{"empty list", List{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"list", List{Int(1), Text("two"), Bool(false)}, `[1,"two",false]`},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Int(1),
		"alpha": Int(2),
		"beta":  Object{"y": Int(1), "x": Int(2)},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":2,"y":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalMapStringAny(t *testing.T) {
	m := map[string]any{
		"title":  "Buy milk",
		"active": true,
		"count":  uint64(3),
		"nested": []any{"a", int64(1)},
	}

	result, err := MarshalCanonical(m)
	require.NoError(t, err)
	assert.Equal(t, `{"active":true,"count":3,"nested":["a",1],"title":"Buy milk"}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	high := string(rune(0x10000))
	private := string(rune(0xE000))
	obj := Object{private: Int(1), high: Int(2)}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"`+high+`":2,"`+private+`":1}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(Text("<b>a & b</b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<b>a & b</b>"`, string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.ErrorContains(t, err, "null")

	_, err = MarshalCanonical(3.14)
	assert.ErrorContains(t, err, "floats")

	_, err = MarshalCanonical(Object{"nested": List{Int(1)}, "bad": nil})
	assert.Error(t, err)

	_, err = MarshalCanonical(struct{}{})
	assert.ErrorContains(t, err, "unsupported")
}

func TestMarshalCanonicalNFC(t *testing.T) {
	composed, err := MarshalCanonical(Text("caf\u00e9"))
	require.NoError(t, err)
	decomposed, err := MarshalCanonical(Text("cafe\u0301"))
	require.NoError(t, err)

	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(Text(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalLineSeparatorsLiteral(t *testing.T) {
	result, err := MarshalCanonical(Text("a" + lineSep + "b" + paraSep + "c"))
	require.NoError(t, err)
	assert.Equal(t, `"a`+lineSep+"b"+paraSep+`c"`, string(result))
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	// Literal backslash followed by "u2028" text must survive untouched.
	input := `escape is \u2028 and actual ` + lineSep

	result, err := MarshalCanonical(Text(input))
	require.NoError(t, err)
	assert.Equal(t, `"escape is \\u2028 and actual `+lineSep+`"`, string(result))
}

func TestMarshalCanonicalAddressAndIdentity(t *testing.T) {
	id := testIdentity("alice")
	addr := TodoAddress(id, "t")

	result, err := MarshalCanonical(map[string]any{"owner": id, "address": addr})
	require.NoError(t, err)
	assert.Equal(t, `{"address":"`+addr.String()+`","owner":"`+id.String()+`"}`, string(result))
}
