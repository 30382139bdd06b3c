package invite

import (
	"encoding/json"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip44"

	"github.com/fairwaylabs/fairway/internal/relay"
)

// kindInviteRumor is the unsigned inner message carrying the invite token.
const kindInviteRumor = 14

// buildRumor creates the unsigned inner event. It has an id but no
// signature: deniable by design of the wrap format, and only readable by
// the recipient.
func buildRumor(senderPub, recipient, token string, createdAt nostr.Timestamp) nostr.Event {
	rumor := nostr.Event{
		PubKey:    senderPub,
		CreatedAt: createdAt,
		Kind:      kindInviteRumor,
		Tags:      nostr.Tags{{"p", recipient}},
		Content:   token,
	}
	rumor.ID = rumor.GetID()
	return rumor
}

// sealRumor encrypts the rumor to the recipient and signs the seal with
// the sender's key (kind 13). The seal proves who sent it - but only to
// someone who can open the wrap.
func sealRumor(rumor nostr.Event, senderSec, recipient string, createdAt nostr.Timestamp) (nostr.Event, error) {
	plaintext, err := json.Marshal(rumor)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("seal rumor: %w", err)
	}

	convKey, err := nip44.GenerateConversationKey(recipient, senderSec)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("seal rumor: conversation key: %w", err)
	}
	ciphertext, err := nip44.Encrypt(string(plaintext), convKey)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("seal rumor: encrypt: %w", err)
	}

	seal := nostr.Event{
		CreatedAt: createdAt,
		Kind:      relay.KindSeal,
		Tags:      nostr.Tags{},
		Content:   ciphertext,
	}
	if err := seal.Sign(senderSec); err != nil {
		return nostr.Event{}, fmt.Errorf("seal rumor: sign: %w", err)
	}
	return seal, nil
}

// wrapSeal encrypts the seal to the recipient under a random ephemeral key
// (kind 1059). The only relay-visible metadata is the recipient p tag and
// the throwaway key; the true sender stays inside the seal.
func wrapSeal(seal nostr.Event, recipient string, createdAt nostr.Timestamp) (nostr.Event, error) {
	plaintext, err := json.Marshal(seal)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("wrap seal: %w", err)
	}

	ephemeralSec := nostr.GeneratePrivateKey()
	convKey, err := nip44.GenerateConversationKey(recipient, ephemeralSec)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("wrap seal: conversation key: %w", err)
	}
	ciphertext, err := nip44.Encrypt(string(plaintext), convKey)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("wrap seal: encrypt: %w", err)
	}

	wrap := nostr.Event{
		CreatedAt: createdAt,
		Kind:      relay.KindGiftWrap,
		Tags:      nostr.Tags{{"p", recipient}},
		Content:   ciphertext,
	}
	if err := wrap.Sign(ephemeralSec); err != nil {
		return nostr.Event{}, fmt.Errorf("wrap seal: sign: %w", err)
	}
	return wrap, nil
}

// Unwrap opens a received gift wrap with the recipient's key and returns
// the inner rumor. The seal's signer must match the rumor's claimed sender;
// a mismatch means someone stuffed a forged rumor inside a valid seal.
func Unwrap(wrap *nostr.Event, recipientSec string) (nostr.Event, error) {
	if wrap.Kind != relay.KindGiftWrap {
		return nostr.Event{}, fmt.Errorf("unwrap: kind %d is not a gift wrap", wrap.Kind)
	}

	wrapKey, err := nip44.GenerateConversationKey(wrap.PubKey, recipientSec)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("unwrap: conversation key: %w", err)
	}
	sealJSON, err := nip44.Decrypt(wrap.Content, wrapKey)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("unwrap: decrypt wrap: %w", err)
	}

	var seal nostr.Event
	if err := json.Unmarshal([]byte(sealJSON), &seal); err != nil {
		return nostr.Event{}, fmt.Errorf("unwrap: parse seal: %w", err)
	}
	if seal.Kind != relay.KindSeal {
		return nostr.Event{}, fmt.Errorf("unwrap: inner kind %d is not a seal", seal.Kind)
	}
	if ok, err := seal.CheckSignature(); err != nil || !ok {
		return nostr.Event{}, fmt.Errorf("unwrap: seal signature invalid")
	}

	sealKey, err := nip44.GenerateConversationKey(seal.PubKey, recipientSec)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("unwrap: conversation key: %w", err)
	}
	rumorJSON, err := nip44.Decrypt(seal.Content, sealKey)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("unwrap: decrypt seal: %w", err)
	}

	var rumor nostr.Event
	if err := json.Unmarshal([]byte(rumorJSON), &rumor); err != nil {
		return nostr.Event{}, fmt.Errorf("unwrap: parse rumor: %w", err)
	}
	if rumor.PubKey != seal.PubKey {
		return nostr.Event{}, fmt.Errorf("unwrap: rumor sender %s does not match seal signer %s",
			rumor.PubKey, seal.PubKey)
	}
	return rumor, nil
}
