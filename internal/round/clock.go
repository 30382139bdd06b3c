package round

import "time"

// Clock supplies recorded_at timestamps. Injected so tests can drive the
// append-only log's latest-wins resolution deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
