package merge

import (
	"context"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
)

// Repository applies merges atomically.
type Repository interface {
	// Rebase moves target's base up to a new tick so it sees source's
	// latest state. Target's own edits keep precedence.
	Rebase(ctx context.Context, source, target, message string) (Result, error)
	// Promote copies source's own edits since its last promotion onto target.
	Promote(ctx context.Context, source, target, message string) (Result, error)
	// Unpromoted counts concepts source edited since its last promotion.
	Unpromoted(ctx context.Context, source string) (int, error)
}

// BranchReader looks up branch tips.
type BranchReader interface {
	Get(ctx context.Context, path string) (*branch.Branch, error)
}
