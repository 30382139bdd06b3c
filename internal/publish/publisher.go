package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/fairway/internal/config"
	"github.com/fairwaylabs/fairway/internal/course"
	"github.com/fairwaylabs/fairway/internal/relay"
	"github.com/fairwaylabs/fairway/internal/round"
	"github.com/fairwaylabs/fairway/internal/store"
)

// ErrReadOnlyAccount is returned by every publish operation when the
// account is read-only. Callers log it and move on; nothing was sent.
var ErrReadOnlyAccount = errors.New("account is read-only, publish skipped")

// ErrNoInitiation is returned when an operation needs the round's
// initiation id and none exists yet.
var ErrNoInitiation = errors.New("round has no initiation record")

// JoinedVia values recorded alongside the initiation event id.
const (
	JoinedSolo   = "solo"
	JoinedHost   = "host"
	JoinedInvite = "joined"
)

// Publisher signs and broadcasts round events. Idempotency for initiation
// events comes from the store's one-shot network record, not from relay
// behavior: the first writer claims the record, everyone else reuses it.
type Publisher struct {
	db        *store.Store
	client    relay.Client
	relays    []string
	secretKey string
	pubkey    string
	state     config.AccountState
	clock     round.Clock
	log       *logrus.Logger
}

// NewPublisher builds a publisher for the local account. The account state
// is fixed at construction: a read-only publisher refuses every operation.
func NewPublisher(db *store.Store, client relay.Client, relays []string, secretKey string, state config.AccountState, clock round.Clock, log *logrus.Logger) (*Publisher, error) {
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("new publisher: %w", err)
	}
	return &Publisher{
		db:        db,
		client:    client,
		relays:    relays,
		secretKey: secretKey,
		pubkey:    pubkey,
		state:     state,
		clock:     clock,
		log:       log,
	}, nil
}

// PublicKey returns the local signing identity.
func (p *Publisher) PublicKey() string { return p.pubkey }

// PublishInitiation broadcasts the round's initiation event exactly once.
//
// The event carries the full canonical course content plus hash tags, so
// any recipient can verify the course without a second fetch. The network
// record is written only after the relays accept the event: an absent
// record always means "not yet on the network", which is what lets
// PublishFinalRecord re-publish a failed initiation later. If a record
// already exists the stored id is returned and nothing is sent.
func (p *Publisher) PublishInitiation(ctx context.Context, r round.Round, snap course.Snapshot) (string, error) {
	if p.state == config.AccountReadOnly {
		p.log.WithField("round", r.ID).Info("read-only account, initiation not published")
		return "", ErrReadOnlyAccount
	}

	existing, found, err := p.db.GetNetworkRecord(ctx, r.ID)
	if err != nil {
		return "", fmt.Errorf("publish initiation: %w", err)
	}
	if found {
		return existing.InitiationEventID, nil
	}

	ev, err := p.buildInitiationEvent(r, snap)
	if err != nil {
		return "", fmt.Errorf("publish initiation: %w", err)
	}

	joinedVia := JoinedHost
	if len(r.Players) == 1 {
		joinedVia = JoinedSolo
	}

	if err := p.client.Publish(ctx, ev, p.relays); err != nil {
		p.log.WithFields(logrus.Fields{
			"round": r.ID,
			"event": ev.ID,
		}).WithError(err).Warn("initiation broadcast failed, round stays unpublished")
		return "", fmt.Errorf("publish initiation: broadcast: %w", err)
	}

	record, inserted, err := p.db.WriteNetworkRecord(ctx, r.ID, ev.ID, joinedVia, p.clock.Now())
	if err != nil {
		return "", fmt.Errorf("publish initiation: %w", err)
	}
	if !inserted {
		// A concurrent publish claimed the record first; its id is
		// authoritative and this event is an unreferenced duplicate.
		p.log.WithFields(logrus.Fields{
			"round": r.ID,
			"event": ev.ID,
			"kept":  record.InitiationEventID,
		}).Warn("concurrent initiation publish, keeping the recorded id")
		return record.InitiationEventID, nil
	}

	p.log.WithFields(logrus.Fields{
		"round": r.ID,
		"event": ev.ID,
		"via":   joinedVia,
	}).Info("round initiation published")
	return ev.ID, nil
}

// RecordJoinedInitiation stores the initiation id of a round this device
// joined via invite. No event is broadcast; the host already did.
func (p *Publisher) RecordJoinedInitiation(ctx context.Context, roundID int64, initiationID string) error {
	record, _, err := p.db.WriteNetworkRecord(ctx, roundID, initiationID, JoinedInvite, p.clock.Now())
	if err != nil {
		return fmt.Errorf("record joined initiation: %w", err)
	}
	if record.InitiationEventID != initiationID {
		return fmt.Errorf("record joined initiation: round %d already bound to event %s",
			roundID, record.InitiationEventID)
	}
	return nil
}

// PublishFinalRecord broadcasts a player's final scorecard. The initiation
// id is required; when the round was never published the initiation is
// published synchronously first, so a final record can never precede its
// initiation on the network. The creator key signs final records for every
// same-device player, with the player identified by p tag.
func (p *Publisher) PublishFinalRecord(ctx context.Context, r round.Round, snap course.Snapshot, playerIndex int, scores map[int]int) (string, error) {
	if p.state == config.AccountReadOnly {
		p.log.WithField("round", r.ID).Info("read-only account, final record not published")
		return "", ErrReadOnlyAccount
	}
	if playerIndex < 0 || playerIndex >= len(r.Players) {
		return "", fmt.Errorf("publish final record: player index %d out of range", playerIndex)
	}

	initiationID, err := p.ensureInitiation(ctx, r, snap)
	if err != nil {
		return "", err
	}

	content, err := relay.MarshalScores(scores)
	if err != nil {
		return "", fmt.Errorf("publish final record: %w", err)
	}

	// The scored player's p tag comes first; the remaining participants
	// follow so the event is self-describing without the initiation.
	tags := nostr.Tags{
		{"e", initiationID},
		{"p", r.Players[playerIndex]},
		{relay.TagCourseHash, r.CourseHash},
	}
	for i, pk := range r.Players {
		if i == playerIndex {
			continue
		}
		tags = append(tags, nostr.Tag{"p", pk})
	}

	ev := nostr.Event{
		Kind:      relay.KindRoundFinal,
		CreatedAt: nostr.Timestamp(p.clock.Now().Unix()),
		Content:   string(content),
		Tags:      tags,
	}
	if err := ev.Sign(p.secretKey); err != nil {
		return "", fmt.Errorf("publish final record: sign: %w", err)
	}

	if err := p.client.Publish(ctx, ev, p.relays); err != nil {
		return "", fmt.Errorf("publish final record: broadcast: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"round":  r.ID,
		"player": playerIndex,
		"event":  ev.ID,
	}).Info("final record published")
	return ev.ID, nil
}

// PublishScoreSnapshot broadcasts the local player's live scorecard as an
// addressable event keyed by the initiation id, replacing any previous
// snapshot for this round. Remote devices poll these.
func (p *Publisher) PublishScoreSnapshot(ctx context.Context, r round.Round, playerIndex int, scores map[int]int) (string, error) {
	if p.state == config.AccountReadOnly {
		return "", ErrReadOnlyAccount
	}
	if playerIndex < 0 || playerIndex >= len(r.Players) {
		return "", fmt.Errorf("publish score snapshot: player index %d out of range", playerIndex)
	}

	record, found, err := p.db.GetNetworkRecord(ctx, r.ID)
	if err != nil {
		return "", fmt.Errorf("publish score snapshot: %w", err)
	}
	if !found {
		return "", fmt.Errorf("publish score snapshot: %w", ErrNoInitiation)
	}

	content, err := relay.MarshalScores(scores)
	if err != nil {
		return "", fmt.Errorf("publish score snapshot: %w", err)
	}

	ev := nostr.Event{
		Kind:      relay.KindScoreSnapshot,
		CreatedAt: nostr.Timestamp(p.clock.Now().Unix()),
		Content:   string(content),
		Tags: nostr.Tags{
			{"d", record.InitiationEventID},
			{"p", r.Players[playerIndex]},
		},
	}
	if err := ev.Sign(p.secretKey); err != nil {
		return "", fmt.Errorf("publish score snapshot: sign: %w", err)
	}

	if err := p.client.Publish(ctx, ev, p.relays); err != nil {
		return "", fmt.Errorf("publish score snapshot: broadcast: %w", err)
	}
	return ev.ID, nil
}

// ensureInitiation returns the round's initiation id, publishing the
// initiation synchronously when the round has none yet.
func (p *Publisher) ensureInitiation(ctx context.Context, r round.Round, snap course.Snapshot) (string, error) {
	record, found, err := p.db.GetNetworkRecord(ctx, r.ID)
	if err != nil {
		return "", fmt.Errorf("ensure initiation: %w", err)
	}
	if found {
		return record.InitiationEventID, nil
	}

	p.log.WithField("round", r.ID).Warn("final record requested before initiation, publishing initiation now")
	id, err := p.PublishInitiation(ctx, r, snap)
	if err != nil {
		return "", fmt.Errorf("ensure initiation: %w", err)
	}
	return id, nil
}

func (p *Publisher) buildInitiationEvent(r round.Round, snap course.Snapshot) (nostr.Event, error) {
	content, err := course.MarshalContent(snap.CourseName, snap.TeeSetName, snap.Holes)
	if err != nil {
		return nostr.Event{}, err
	}
	rulesHash, err := course.RulesHash(snap.Holes)
	if err != nil {
		return nostr.Event{}, err
	}

	tags := nostr.Tags{
		{relay.TagCourseHash, snap.ContentHash},
		{relay.TagRulesHash, rulesHash},
		{relay.TagRoundDate, r.Date},
	}
	for _, pk := range r.Players {
		tags = append(tags, nostr.Tag{"p", pk})
	}

	ev := nostr.Event{
		Kind:      relay.KindRoundInitiation,
		CreatedAt: nostr.Timestamp(p.clock.Now().Unix()),
		Content:   string(content),
		Tags:      tags,
	}
	if err := ev.Sign(p.secretKey); err != nil {
		return nostr.Event{}, fmt.Errorf("sign initiation: %w", err)
	}
	return ev, nil
}
