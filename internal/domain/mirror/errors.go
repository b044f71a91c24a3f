package mirror

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingBranchPath indicates an activity without a branch path.
	ErrMissingBranchPath = errors.New("activity branch path is required")
	// ErrInconsistentEvent indicates an activity whose branch path disagrees
	// with the merge target named in its commit comment.
	ErrInconsistentEvent = errors.New("activity branch path does not match merge target")
)

// LineError locates a failure in an activity log.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d of activity log: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
