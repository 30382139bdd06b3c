package course

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no snapshot exists for a content hash. This
// is the honest "we have never seen this course" answer.
var ErrNotFound = errors.New("course snapshot not found")

// UntrustedContentError is returned when a recomputed content hash disagrees
// with the hash embedded in received network content. It implies tampering or
// a relay serving altered data, so it must never be treated as a plain miss.
type UntrustedContentError struct {
	Embedded string
	Computed string
}

func (e *UntrustedContentError) Error() string {
	return fmt.Sprintf("untrusted course content: embedded hash %s, recomputed %s", e.Embedded, e.Computed)
}

// IsUntrustedContent reports whether err is an UntrustedContentError,
// unwrapping as needed.
func IsUntrustedContent(err error) bool {
	var ue *UntrustedContentError
	return errors.As(err, &ue)
}
