package relay

import (
	"context"
	"errors"

	"github.com/nbd-wtf/go-nostr"
)

// ErrNoRelays is returned when an operation is attempted with an empty relay
// list.
var ErrNoRelays = errors.New("no relays configured")

// Client is the transport seam. Production code talks to real relays; tests
// substitute an in-memory fake. All failures from a Client are the non-fatal
// network class: callers log and degrade, they never corrupt local state
// over them.
type Client interface {
	// Publish fans the event out to the given relays. Success on any one
	// relay is success; an error means every relay rejected or timed out.
	Publish(ctx context.Context, ev nostr.Event, relays []string) error

	// QuerySync runs the filter against every relay and merges the results,
	// deduplicated by event id. Per-relay failures are tolerated as long as
	// at least one relay answers.
	QuerySync(ctx context.Context, filter nostr.Filter, relays []string) ([]*nostr.Event, error)
}
