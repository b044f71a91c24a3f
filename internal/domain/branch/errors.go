package branch

import "errors"

var (
	// ErrBranchNotFound indicates the branch doesn't exist.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrParentNotFound indicates the parent of a new branch doesn't exist.
	ErrParentNotFound = errors.New("parent branch not found")
	// ErrInvalidPath indicates a malformed branch path.
	ErrInvalidPath = errors.New("invalid branch path")
)
