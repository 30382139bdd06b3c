package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

// FakeRelay is an in-memory relay client for tests. It stores everything
// published and answers queries by filter match, newest first. Errors can be
// injected per call site.
type FakeRelay struct {
	mu     sync.Mutex
	events []*nostr.Event

	// PublishErr / QueryErr, when set, fail the corresponding call.
	PublishErr error
	QueryErr   error

	// PublishedTo records the relay lists each publish targeted, in order.
	PublishedTo [][]string
}

// NewFakeRelay creates an empty fake relay.
func NewFakeRelay() *FakeRelay {
	return &FakeRelay{}
}

// Publish stores the event.
func (f *FakeRelay) Publish(ctx context.Context, ev nostr.Event, relays []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishErr != nil {
		return f.PublishErr
	}
	evCopy := ev
	f.events = append(f.events, &evCopy)
	f.PublishedTo = append(f.PublishedTo, relays)
	return nil
}

// QuerySync returns stored events matching the filter, newest first,
// truncated to the filter's limit when set.
func (f *FakeRelay) QuerySync(ctx context.Context, filter nostr.Filter, relays []string) ([]*nostr.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}

	var matches []*nostr.Event
	for _, ev := range f.events {
		if filter.Matches(ev) {
			matches = append(matches, ev)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt > matches[j].CreatedAt
	})

	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

// Seed stores an event directly, bypassing Publish bookkeeping.
func (f *FakeRelay) Seed(ev nostr.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	evCopy := ev
	f.events = append(f.events, &evCopy)
}

// Events returns a copy of everything stored.
func (f *FakeRelay) Events() []*nostr.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*nostr.Event, len(f.events))
	copy(out, f.events)
	return out
}

// EventsOfKind returns stored events of one kind, in insertion order.
func (f *FakeRelay) EventsOfKind(kind int) []*nostr.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*nostr.Event
	for _, ev := range f.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
