// Package invite turns a published round into something a friend can join:
// a self-contained nevent token, delivered as a gift-wrapped direct message
// so relays never see who invited whom.
package invite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/fairway/internal/config"
	"github.com/fairwaylabs/fairway/internal/identity"
	"github.com/fairwaylabs/fairway/internal/publish"
	"github.com/fairwaylabs/fairway/internal/relay"
	"github.com/fairwaylabs/fairway/internal/round"
	"github.com/fairwaylabs/fairway/internal/store"
)

// Inviter sends round invites over gift-wrapped DMs. Deliveries are
// best-effort and independent per recipient: one unreachable inbox never
// blocks the others.
type Inviter struct {
	db        *store.Store
	client    relay.Client
	cache     *identity.Cache
	relays    []string // general relays, used as token hints
	dmRelays  []string // fallback inbox relays
	secretKey string
	pubkey    string
	state     config.AccountState
	clock     round.Clock
	log       *logrus.Logger
}

// NewInviter builds an inviter for the local account.
func NewInviter(db *store.Store, client relay.Client, cache *identity.Cache, relays, dmRelays []string, secretKey string, state config.AccountState, clock round.Clock, log *logrus.Logger) (*Inviter, error) {
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("new inviter: %w", err)
	}
	return &Inviter{
		db:        db,
		client:    client,
		cache:     cache,
		relays:    relays,
		dmRelays:  dmRelays,
		secretKey: secretKey,
		pubkey:    pubkey,
		state:     state,
		clock:     clock,
		log:       log,
	}, nil
}

// Token builds the shareable invite token for a round. The round must have
// an initiation record; the token embeds its event id, the local relays as
// hints, and the host pubkey.
func (iv *Inviter) Token(ctx context.Context, r round.Round) (string, error) {
	record, found, err := iv.db.GetNetworkRecord(ctx, r.ID)
	if err != nil {
		return "", fmt.Errorf("invite token: %w", err)
	}
	if !found {
		return "", fmt.Errorf("invite token: %w", publish.ErrNoInitiation)
	}
	return Encode(record.InitiationEventID, iv.relays, iv.pubkey)
}

// SendInvites gift-wraps the round's invite token to each recipient and
// publishes it to their inbox relays, falling back to the configured DM
// relays when a recipient advertises none. Returns how many deliveries
// succeeded; individual failures are logged, not returned.
func (iv *Inviter) SendInvites(ctx context.Context, r round.Round, recipients []string) (int, error) {
	if iv.state == config.AccountReadOnly {
		iv.log.WithField("round", r.ID).Info("read-only account, invites not sent")
		return 0, publish.ErrReadOnlyAccount
	}

	token, err := iv.Token(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("send invites: %w", err)
	}

	sent := 0
	for _, recipient := range recipients {
		if err := iv.sendOne(ctx, r, recipient, token); err != nil {
			iv.log.WithFields(logrus.Fields{
				"round":     r.ID,
				"recipient": recipient,
			}).WithError(err).Warn("invite delivery failed")
			continue
		}
		sent++
	}
	return sent, nil
}

func (iv *Inviter) sendOne(ctx context.Context, r round.Round, recipient, token string) error {
	inbox := iv.cache.InboxRelays(ctx, recipient)
	if len(inbox) == 0 {
		inbox = iv.dmRelays
	}
	if len(inbox) == 0 {
		return fmt.Errorf("no inbox relays for %s and no fallback configured", recipient)
	}

	now := nostr.Timestamp(iv.clock.Now().Unix())
	rumor := buildRumor(iv.pubkey, recipient, token, now)
	seal, err := sealRumor(rumor, iv.secretKey, recipient, now)
	if err != nil {
		return err
	}
	wrap, err := wrapSeal(seal, recipient, now)
	if err != nil {
		return err
	}

	if err := iv.client.Publish(ctx, wrap, inbox); err != nil {
		return fmt.Errorf("publish wrap: %w", err)
	}

	if err := iv.db.RecordInviteDelivery(ctx, uuid.NewString(), r.ID, recipient,
		strings.Join(inbox, ","), iv.clock.Now()); err != nil {
		// Delivery already happened; a failed audit row is log-only.
		iv.log.WithField("recipient", recipient).WithError(err).Warn("invite delivery not recorded")
	}
	return nil
}
