package merge

import "errors"

var (
	// ErrNotApplicable indicates source and target aren't parent and child.
	ErrNotApplicable = errors.New("merge not applicable between branches")
	// ErrNothingToMerge indicates source has no commits the target lacks.
	ErrNothingToMerge = errors.New("nothing to merge")
)
