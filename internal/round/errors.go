package round

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no round exists for an id.
var ErrNotFound = errors.New("round not found")

// InvalidPlayerSetError is returned by Create when the player set is
// malformed: empty, containing duplicates, or containing keys that are not
// 64-character lowercase hex.
type InvalidPlayerSetError struct {
	Reason string
}

func (e *InvalidPlayerSetError) Error() string {
	return fmt.Sprintf("invalid player set: %s", e.Reason)
}

// IsInvalidPlayerSet reports whether err is an InvalidPlayerSetError,
// unwrapping as needed.
func IsInvalidPlayerSet(err error) bool {
	var ie *InvalidPlayerSetError
	return errors.As(err, &ie)
}

// FinishNotReadyError is returned by RequestFinish while holes remain
// unscored. Missing lists the hole numbers with no score rows.
type FinishNotReadyError struct {
	Missing []int
}

func (e *FinishNotReadyError) Error() string {
	return fmt.Sprintf("finish not ready: %d unscored holes %v", len(e.Missing), e.Missing)
}

// IsFinishNotReady reports whether err is a FinishNotReadyError.
func IsFinishNotReady(err error) bool {
	var fe *FinishNotReadyError
	return errors.As(err, &fe)
}
