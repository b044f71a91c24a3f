package branch

import "context"

// Repository provides persistence for branches.
type Repository interface {
	Create(ctx context.Context, path string) (*Branch, error)
	Get(ctx context.Context, path string) (*Branch, error)
	List(ctx context.Context) ([]Branch, error)
	Commits(ctx context.Context, path string, limit int) ([]Commit, error)
}
