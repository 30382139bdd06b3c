package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"
)

const defaultOpTimeout = 10 * time.Second

// Pool is the production Client. It keeps one connection per relay URL,
// reconnecting lazily when a cached connection has gone bad.
type Pool struct {
	log     *logrus.Logger
	timeout time.Duration

	mu    sync.Mutex
	conns map[string]*nostr.Relay
}

// NewPool builds a relay pool. Connections are opened on first use.
func NewPool(log *logrus.Logger) *Pool {
	return &Pool{
		log:     log,
		timeout: defaultOpTimeout,
		conns:   make(map[string]*nostr.Relay),
	}
}

// Publish sends the event to every relay, first success wins. Individual
// relay failures are logged at warn level; the returned error only fires
// when no relay accepted the event.
func (p *Pool) Publish(ctx context.Context, ev nostr.Event, relays []string) error {
	if len(relays) == 0 {
		return ErrNoRelays
	}

	var lastErr error
	published := false
	for _, url := range relays {
		err := p.publishOne(ctx, ev, url)
		if err != nil {
			lastErr = err
			p.log.WithFields(logrus.Fields{
				"relay": url,
				"kind":  ev.Kind,
				"event": ev.ID,
			}).WithError(err).Warn("publish failed")
			continue
		}
		published = true
	}

	if !published {
		return fmt.Errorf("publish to %d relays failed: %w", len(relays), lastErr)
	}
	return nil
}

// QuerySync runs the filter on every relay, merging results by event id.
// Succeeds when at least one relay answered, even with zero events.
func (p *Pool) QuerySync(ctx context.Context, filter nostr.Filter, relays []string) ([]*nostr.Event, error) {
	if len(relays) == 0 {
		return nil, ErrNoRelays
	}

	var lastErr error
	answered := false
	seen := make(map[string]bool)
	var merged []*nostr.Event

	for _, url := range relays {
		events, err := p.queryOne(ctx, filter, url)
		if err != nil {
			lastErr = err
			p.log.WithField("relay", url).WithError(err).Warn("query failed")
			continue
		}
		answered = true
		for _, ev := range events {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			merged = append(merged, ev)
		}
	}

	if !answered {
		return nil, fmt.Errorf("query on %d relays failed: %w", len(relays), lastErr)
	}
	return merged, nil
}

func (p *Pool) publishOne(ctx context.Context, ev nostr.Event, url string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.connect(ctx, url)
	if err != nil {
		return err
	}
	if err := conn.Publish(ctx, ev); err != nil {
		p.evict(url)
		return err
	}
	return nil
}

func (p *Pool) queryOne(ctx context.Context, filter nostr.Filter, url string) ([]*nostr.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.connect(ctx, url)
	if err != nil {
		return nil, err
	}
	events, err := conn.QuerySync(ctx, filter)
	if err != nil {
		p.evict(url)
		return nil, err
	}
	return events, nil
}

func (p *Pool) connect(ctx context.Context, url string) (*nostr.Relay, error) {
	p.mu.Lock()
	if conn, ok := p.conns[url]; ok {
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()

	conn, err := nostr.RelayConnect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}

	p.mu.Lock()
	p.conns[url] = conn
	p.mu.Unlock()
	return conn, nil
}

func (p *Pool) evict(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.conns[url]; ok {
		conn.Close()
		delete(p.conns, url)
	}
}

// Close tears down every cached connection.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for url, conn := range p.conns {
		conn.Close()
		delete(p.conns, url)
	}
}
