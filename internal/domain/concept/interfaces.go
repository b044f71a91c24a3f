package concept

import "context"

// Repository provides persistence for concept versions.
type Repository interface {
	// Commit stores every concept on branchPath under one new tick.
	Commit(ctx context.Context, branchPath string, concepts []Concept, message string) (int64, error)
	// Get resolves the version of id visible on branchPath.
	Get(ctx context.Context, branchPath, id string) (*Concept, error)
	// List resolves every concept visible on branchPath.
	List(ctx context.Context, branchPath string) ([]Concept, error)
}

// SearchRepository provides full-text search over concept bodies.
type SearchRepository interface {
	Search(ctx context.Context, branchPath, query string, opts SearchOptions) ([]SearchResult, error)
}
