// Package poller pulls remote players' state down from relays on demand.
// There are no background subscriptions: every refresh is an explicit user
// action, and everything fetched lands in side tables that never touch the
// local score log.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/fairway/internal/relay"
	"github.com/fairwaylabs/fairway/internal/round"
	"github.com/fairwaylabs/fairway/internal/store"
)

// ErrAwaitTimeout is returned when AwaitInitiationRecord exhausts its
// attempts without seeing the event on any relay.
var ErrAwaitTimeout = errors.New("initiation record not seen on relays")

// Poller fetches remote score snapshots and confirms initiation broadcasts.
type Poller struct {
	db     *store.Store
	client relay.Client
	relays []string
	clock  round.Clock
	log    *logrus.Logger
}

// NewPoller builds a poller over the given relays.
func NewPoller(db *store.Store, client relay.Client, relays []string, clock round.Clock, log *logrus.Logger) *Poller {
	return &Poller{db: db, client: client, relays: relays, clock: clock, log: log}
}

// RefreshRemoteScores fetches the latest score snapshot of every remote
// player (index > 0) of the round and upserts the results into the
// remote_scores side table. Per-player failures are logged and skipped:
// one unreachable player never hides the others. The returned map holds
// what was fetched this call, keyed by pubkey.
//
// This never writes hole_scores. Remote data cannot corrupt the local log.
func (p *Poller) RefreshRemoteScores(ctx context.Context, r round.Round) (map[string]map[int]int, error) {
	record, found, err := p.db.GetNetworkRecord(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh remote scores: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("refresh remote scores: round %d has no initiation record", r.ID)
	}

	results := make(map[string]map[int]int)
	for i, pubkey := range r.Players {
		if i == 0 {
			continue // local device owner
		}
		scores, err := p.fetchPlayerSnapshot(ctx, record.InitiationEventID, pubkey)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"round":  r.ID,
				"player": pubkey,
			}).WithError(err).Warn("remote score fetch failed")
			continue
		}
		if scores == nil {
			continue // no snapshot published yet
		}
		results[pubkey] = scores
	}
	return results, nil
}

// fetchPlayerSnapshot queries one player's latest addressable snapshot for
// the round and stores it. Returns (nil, nil) when the player has not
// published one.
func (p *Poller) fetchPlayerSnapshot(ctx context.Context, initiationID, pubkey string) (map[int]int, error) {
	filter := nostr.Filter{
		Kinds:   []int{relay.KindScoreSnapshot},
		Authors: []string{pubkey},
		Tags:    nostr.TagMap{"d": []string{initiationID}},
		Limit:   1,
	}

	events, err := p.client.QuerySync(ctx, filter, p.relays)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	ev := events[0]
	scores, err := relay.ParseScores([]byte(ev.Content))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", ev.ID, err)
	}

	snapshotAt := time.Unix(int64(ev.CreatedAt), 0)
	fetchedAt := p.clock.Now()
	roundID, err := p.roundIDForInitiation(ctx, initiationID)
	if err != nil {
		return nil, err
	}
	for hole, strokes := range scores {
		if err := p.db.UpsertRemoteScore(ctx, roundID, pubkey, hole, strokes, snapshotAt, fetchedAt); err != nil {
			return nil, err
		}
	}
	return scores, nil
}

// roundIDForInitiation maps an initiation event id back to the local round.
func (p *Poller) roundIDForInitiation(ctx context.Context, initiationID string) (int64, error) {
	var roundID int64
	err := p.db.DB().QueryRowContext(ctx, `
		SELECT round_id FROM round_network_records WHERE initiation_event_id = ?
	`, initiationID).Scan(&roundID)
	if err != nil {
		return 0, fmt.Errorf("round for initiation %s: %w", initiationID, err)
	}
	return roundID, nil
}

// AwaitInitiationRecord polls until the round's initiation event is visible
// on the relays, up to maxAttempts with the given interval between attempts.
// The round may be usable before its network record exists - the initiation
// publish runs detached from round creation - so attempts where the local
// record has not appeared yet count as misses too, same as relay query
// errors. Cancelling the context stops the wait immediately; exhausting the
// attempts returns ErrAwaitTimeout.
func (p *Poller) AwaitInitiationRecord(ctx context.Context, r round.Round, maxAttempts int, interval time.Duration) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		record, found, err := p.db.GetNetworkRecord(ctx, r.ID)
		if err != nil {
			return "", fmt.Errorf("await initiation: %w", err)
		}
		if found {
			filter := nostr.Filter{
				IDs:   []string{record.InitiationEventID},
				Kinds: []int{relay.KindRoundInitiation},
				Limit: 1,
			}
			events, err := p.client.QuerySync(ctx, filter, p.relays)
			if err != nil {
				p.log.WithField("attempt", attempt).WithError(err).Debug("initiation lookup failed")
			} else if len(events) > 0 {
				return record.InitiationEventID, nil
			}
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
	return "", fmt.Errorf("await initiation for round %d after %d attempts: %w",
		r.ID, maxAttempts, ErrAwaitTimeout)
}
