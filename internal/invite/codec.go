package invite

import (
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// Ref is a decoded invite token: the initiation event plus hints for
// finding it.
type Ref struct {
	EventID    string
	RelayHints []string
	Author     string
}

// Encode packs an initiation event id, relay hints, and the host's pubkey
// into a shareable nevent token. Pure transform, no local state.
func Encode(eventID string, relayHints []string, author string) (string, error) {
	token, err := nip19.EncodeEvent(eventID, relayHints, author)
	if err != nil {
		return "", fmt.Errorf("encode invite: %w", err)
	}
	return token, nil
}

// Decode unpacks an invite token. Anything that is not an nevent is
// rejected.
func Decode(token string) (Ref, error) {
	prefix, value, err := nip19.Decode(token)
	if err != nil {
		return Ref{}, fmt.Errorf("decode invite: %w", err)
	}
	if prefix != "nevent" {
		return Ref{}, fmt.Errorf("decode invite: unexpected token type %q", prefix)
	}

	pointer, ok := value.(nostr.EventPointer)
	if !ok {
		return Ref{}, fmt.Errorf("decode invite: unexpected payload %T", value)
	}

	return Ref{
		EventID:    pointer.ID,
		RelayHints: pointer.Relays,
		Author:     pointer.Author,
	}, nil
}
