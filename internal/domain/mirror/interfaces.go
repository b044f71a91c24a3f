package mirror

import (
	"context"

	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/journal"
	"github.com/rpggio/authoring-mirror/internal/domain/merge"
)

// BranchStore checks and creates local branches.
type BranchStore interface {
	Exists(ctx context.Context, path string) (bool, error)
	// EnsureExists creates path along with any missing ancestors.
	EnsureExists(ctx context.Context, path string) error
}

// ConceptStore applies edited documents to a branch.
type ConceptStore interface {
	Update(ctx context.Context, docs []concept.Document, branchPath string) error
}

// MergeEngine replays a merge that was already decided upstream.
type MergeEngine interface {
	MergeBranchSync(ctx context.Context, source, target string, squashMessage *string, force bool) (*merge.Result, error)
}

// Journal keeps an audit trail of mirrored activities.
type Journal interface {
	Record(ctx context.Context, entry *journal.Entry) error
}
