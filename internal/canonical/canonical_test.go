package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"zero", Int(0), "0"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{Int(4), Int(3), Int(5)}, "[4,3,5]"},
		{"simple object", Object{"par": Int(4)}, `{"par":4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := Object{
		"teeSet": String("White"),
		"course": String("Pebble Creek"),
		"holes":  Array{},
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"course":"Pebble Creek","holes":[],"teeSet":"White"}`, string(result))
}

func TestMarshalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"z": Object{"b": Int(1), "a": Int(2)},
		"a": Int(3),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000: UTF-16 order differs from UTF-8. The surrogate
	// pair (0xD800 0xDC00) sorts before 0xE000 under RFC 8785.
	obj := Object{
		"": Int(1),
		"𐀀":      Int(2),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)

	expected := `{"𐀀":2,"` + "" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	result, err := Marshal(String("Smith & Sons <Links>"))
	require.NoError(t, err)
	assert.Equal(t, `"Smith & Sons <Links>"`, string(result))
}

func TestMarshalNFCNormalization(t *testing.T) {
	// e + combining acute (NFD) must serialize identically to precomposed
	// U+00E9 (NFC). Otherwise two devices typing the same course name could
	// disagree on its hash.
	decomposed := String("Café Links")
	precomposed := String("Café Links")

	a, err := Marshal(decomposed)
	require.NoError(t, err)
	b, err := Marshal(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalLineSeparators(t *testing.T) {
	// U+2028 stays literal per RFC 8785.
	result, err := Marshal(String("a b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a b\"", string(result))

	// A literal backslash followed by the text "u2028" stays escaped.
	result, err = Marshal(String("a\\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestFromJSONRejectsFloats(t *testing.T) {
	_, err := FromJSON([]byte(`{"par":4.5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestFromJSONRejectsNull(t *testing.T) {
	_, err := FromJSON([]byte(`{"par":null}`))
	require.Error(t, err)
}

func TestFromJSONRoundTrip(t *testing.T) {
	v, err := FromJSON([]byte(`{"course":"Pebble Creek","holes":[{"hole":1,"par":4}],"teeSet":"White"}`))
	require.NoError(t, err)

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"course":"Pebble Creek","holes":[{"hole":1,"par":4}],"teeSet":"White"}`, string(out))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	courseHash := HashWithDomain(DomainCourse, data)
	rulesHash := HashWithDomain(DomainRules, data)

	assert.Len(t, courseHash, 64)
	assert.Len(t, rulesHash, 64)
	assert.NotEqual(t, courseHash, rulesHash)
}

func TestHashObjectDeterministic(t *testing.T) {
	obj := Object{
		"course": String("Pebble Creek"),
		"teeSet": String("White"),
	}

	h1, err := HashObject(DomainCourse, obj)
	require.NoError(t, err)
	h2, err := HashObject(DomainCourse, obj)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
