package poller

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/fairway/internal/config"
	"github.com/fairwaylabs/fairway/internal/course"
	"github.com/fairwaylabs/fairway/internal/publish"
	"github.com/fairwaylabs/fairway/internal/relay"
	"github.com/fairwaylabs/fairway/internal/round"
	"github.com/fairwaylabs/fairway/internal/store"
	"github.com/fairwaylabs/fairway/internal/testutil"
)

type fixture struct {
	db       *store.Store
	fake     *testutil.FakeRelay
	poller   *Poller
	agg      *round.Aggregate
	pub      *publish.Publisher
	snap     course.Snapshot
	round    round.Round
	initID   string
	hostKey  string
	guestKey string
	guestSec string
}

// newFixture creates a two-player round with a published initiation, where
// the guest player has their own signing key for seeding snapshots.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := testutil.NewDeterministicClock(time.UnixMilli(1_000_000))
	agg := round.NewAggregate(db, clock)

	holes := []course.Hole{{Number: 1, Par: 4}, {Number: 2, Par: 3}}
	snap, err := course.NewStore(db).GetOrCreate(ctx, "Pebble Creek", "Blue", holes, time.UnixMilli(500))
	require.NoError(t, err)

	hostSec := nostr.GeneratePrivateKey()
	hostKey, err := nostr.GetPublicKey(hostSec)
	require.NoError(t, err)
	guestSec := nostr.GeneratePrivateKey()
	guestKey, err := nostr.GetPublicKey(guestSec)
	require.NoError(t, err)

	r, err := agg.Create(ctx, snap, []string{hostKey, guestKey}, "2026-08-25")
	require.NoError(t, err)

	fake := testutil.NewFakeRelay()
	relays := []string{"wss://relay.test"}
	pub, err := publish.NewPublisher(db, fake, relays, hostSec, config.AccountActive, clock, testutil.QuietLogger())
	require.NoError(t, err)

	initID, err := pub.PublishInitiation(ctx, r, snap)
	require.NoError(t, err)

	return &fixture{
		db:       db,
		fake:     fake,
		poller:   NewPoller(db, fake, relays, clock, testutil.QuietLogger()),
		agg:      agg,
		pub:      pub,
		snap:     snap,
		round:    r,
		initID:   initID,
		hostKey:  hostKey,
		guestKey: guestKey,
		guestSec: guestSec,
	}
}

// seedGuestSnapshot publishes a signed 30091 snapshot for the guest.
func (f *fixture) seedGuestSnapshot(t *testing.T, scores map[int]int, createdAt int64) {
	t.Helper()
	content, err := relay.MarshalScores(scores)
	require.NoError(t, err)

	ev := nostr.Event{
		Kind:      relay.KindScoreSnapshot,
		CreatedAt: nostr.Timestamp(createdAt),
		Content:   string(content),
		Tags:      nostr.Tags{{"d", f.initID}, {"p", f.guestKey}},
	}
	require.NoError(t, ev.Sign(f.guestSec))
	f.fake.Seed(ev)
}

func TestRefreshRemoteScores_FetchesAndStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedGuestSnapshot(t, map[int]int{1: 5, 2: 4}, 1_000)

	results, err := f.poller.RefreshRemoteScores(ctx, f.round)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 5, 2: 4}, results[f.guestKey])

	stored, err := f.db.RemoteScores(ctx, f.round.ID, f.guestKey)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 5, 2: 4}, stored)
}

func TestRefreshRemoteScores_LatestSnapshotWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedGuestSnapshot(t, map[int]int{1: 5}, 1_000)
	f.seedGuestSnapshot(t, map[int]int{1: 4, 2: 3}, 2_000)

	results, err := f.poller.RefreshRemoteScores(ctx, f.round)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 4, 2: 3}, results[f.guestKey],
		"only the newest snapshot counts")
}

func TestRefreshRemoteScores_NoSnapshotYet(t *testing.T) {
	f := newFixture(t)

	results, err := f.poller.RefreshRemoteScores(context.Background(), f.round)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRefreshRemoteScores_QueryFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.fake.QueryErr = assert.AnError

	results, err := f.poller.RefreshRemoteScores(context.Background(), f.round)
	require.NoError(t, err, "per-player fetch failures degrade, never fail the refresh")
	assert.Empty(t, results)
}

func TestRefreshRemoteScores_NeverWritesLocalLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedGuestSnapshot(t, map[int]int{1: 5}, 1_000)
	_, err := f.poller.RefreshRemoteScores(ctx, f.round)
	require.NoError(t, err)

	var count int
	err = f.db.DB().QueryRow("SELECT COUNT(*) FROM hole_scores").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count, "remote data must never enter hole_scores")
}

func TestAwaitInitiationRecord_FindsPublishedEvent(t *testing.T) {
	f := newFixture(t)

	id, err := f.poller.AwaitInitiationRecord(context.Background(), f.round, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, f.initID, id)
}

func TestAwaitInitiationRecord_TimesOut(t *testing.T) {
	f := newFixture(t)
	f.fake.QueryErr = assert.AnError

	_, err := f.poller.AwaitInitiationRecord(context.Background(), f.round, 2, time.Millisecond)
	assert.ErrorIs(t, err, ErrAwaitTimeout)
}

func TestAwaitInitiationRecord_Cancellable(t *testing.T) {
	f := newFixture(t)
	f.fake.QueryErr = assert.AnError

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.poller.AwaitInitiationRecord(ctx, f.round, 100, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitInitiationRecord_WaitsForDetachedPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The publish runs detached from round creation, so the wait may start
	// before the network record exists locally.
	r2, err := f.agg.Create(ctx, f.snap, []string{f.hostKey, f.guestKey}, "2026-08-26")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(20 * time.Millisecond)
		_, err := f.pub.PublishInitiation(ctx, r2, f.snap)
		assert.NoError(t, err)
	}()

	id, err := f.poller.AwaitInitiationRecord(ctx, r2, 100, 5*time.Millisecond)
	require.NoError(t, err)
	<-done

	rec, found, err := f.db.GetNetworkRecord(ctx, r2.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.InitiationEventID, id)
}

func TestAwaitInitiationRecord_TimesOutWithoutRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r2, err := f.agg.Create(ctx, f.snap, []string{f.hostKey, f.guestKey}, "2026-08-26")
	require.NoError(t, err)

	_, err = f.poller.AwaitInitiationRecord(ctx, r2, 2, time.Millisecond)
	assert.ErrorIs(t, err, ErrAwaitTimeout)
}
