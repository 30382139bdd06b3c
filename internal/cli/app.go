package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/fairway/internal/config"
	"github.com/fairwaylabs/fairway/internal/course"
	"github.com/fairwaylabs/fairway/internal/identity"
	"github.com/fairwaylabs/fairway/internal/invite"
	"github.com/fairwaylabs/fairway/internal/poller"
	"github.com/fairwaylabs/fairway/internal/publish"
	"github.com/fairwaylabs/fairway/internal/relay"
	"github.com/fairwaylabs/fairway/internal/round"
	"github.com/fairwaylabs/fairway/internal/store"
	"github.com/fairwaylabs/fairway/internal/tasks"
)

// App wires the full object graph behind the commands. Commands stay thin:
// parse flags, call one operation, format the result.
type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	DB       *store.Store
	Courses  *course.Store
	Rounds   *round.Aggregate
	Pool     *relay.Pool
	Pub      *publish.Publisher
	Poller   *poller.Poller
	Identity *identity.Cache
	Inviter  *invite.Inviter
	Runner   *tasks.Runner
}

// NewApp opens the config and builds every component. Close releases the
// database, relay connections, and drains background tasks.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading config", err)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, WrapExitError(ExitCommandError, "creating data dir", err)
	}

	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening database", err)
	}

	clock := round.SystemClock{}
	pool := relay.NewPool(log)
	state := cfg.AccountState()

	pub, err := publish.NewPublisher(db, pool, cfg.Relays, cfg.SecretKey, state, clock, log)
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "building publisher", err)
	}

	cache := identity.NewCache(db, pool, cfg.Relays, clock, log)
	inviter, err := invite.NewInviter(db, pool, cache, cfg.Relays, cfg.DMRelays, cfg.SecretKey, state, clock, log)
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "building inviter", err)
	}

	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Courses:  course.NewStore(db),
		Rounds:   round.NewAggregate(db, clock),
		Pool:     pool,
		Pub:      pub,
		Poller:   poller.NewPoller(db, pool, cfg.Relays, clock, log),
		Identity: cache,
		Inviter:  inviter,
		Runner:   tasks.NewRunner(ctx, log),
	}, nil
}

// Close drains background work and releases resources.
func (a *App) Close() {
	a.Runner.Close()
	a.Pool.Close()
	if err := a.DB.Close(); err != nil {
		a.Log.WithError(err).Warn("database close failed")
	}
}

// LoadRound fetches a round with a command-friendly error.
func (a *App) LoadRound(ctx context.Context, roundID int64) (round.Round, course.Snapshot, error) {
	r, err := a.Rounds.Get(ctx, roundID)
	if err != nil {
		return round.Round{}, course.Snapshot{},
			WrapExitError(ExitCommandError, fmt.Sprintf("round %d", roundID), err)
	}
	snap, err := a.Courses.Get(ctx, r.CourseHash)
	if err != nil {
		return round.Round{}, course.Snapshot{},
			WrapExitError(ExitCommandError, fmt.Sprintf("course for round %d", roundID), err)
	}
	return r, snap, nil
}
