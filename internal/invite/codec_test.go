package invite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	eventID := strings.Repeat("1", 64)
	author := strings.Repeat("a", 64)
	hints := []string{"wss://relay-one.example.com", "wss://relay-two.example.com"}

	token, err := Encode(eventID, hints, author)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "nevent1"), "token = %s", token)

	ref, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, eventID, ref.EventID)
	assert.Equal(t, author, ref.Author)
	assert.Equal(t, hints, ref.RelayHints)
}

func TestEncodeDecode_NoHints(t *testing.T) {
	eventID := strings.Repeat("2", 64)

	token, err := Encode(eventID, nil, strings.Repeat("b", 64))
	require.NoError(t, err)

	ref, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, eventID, ref.EventID)
	assert.Empty(t, ref.RelayHints)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	tests := []string{
		"",
		"not-a-token",
		"npub1invalid",
	}
	for _, token := range tests {
		_, err := Decode(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestDecode_RejectsNonEventTokens(t *testing.T) {
	// A well-formed token of the wrong type (npub) must be rejected.
	_, err := Decode("npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j4s3evf6u64th6gkwsyjh6w6")
	assert.Error(t, err)
}
