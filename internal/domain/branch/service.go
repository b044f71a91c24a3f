package branch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/authoring-mirror/internal/repository"
)

// Service handles branch operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new branch service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Exists reports whether a branch is present in the local store.
func (s *Service) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.repo.Get(ctx, path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("checking branch %s: %w", path, err)
}

// Get fetches a branch by path.
func (s *Service) Get(ctx context.Context, path string) (*Branch, error) {
	b, err := s.repo.Get(ctx, path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("getting branch: %w", err)
	}
	return b, nil
}

// List returns all branches ordered by path.
func (s *Service) List(ctx context.Context) ([]Branch, error) {
	return s.repo.List(ctx)
}

// Create creates a branch under its existing parent. Creating a branch that
// already exists returns the stored branch.
func (s *Service) Create(ctx context.Context, path string) (*Branch, error) {
	if err := ValidatePath(path); err != nil {
		return nil, fmt.Errorf("%w: %q", err, path)
	}
	if existing, err := s.repo.Get(ctx, path); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking branch %s: %w", path, err)
	}

	b, err := s.repo.Create(ctx, path)
	switch {
	case err == nil:
		s.logger.Info("branch created", "path", path, "base_tick", b.BaseTick)
		return b, nil
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return nil, fmt.Errorf("%w: %s", ErrParentNotFound, ParentPath(path))
	case errors.Is(err, repository.ErrConflict):
		// Lost a race with another writer; the branch is there now.
		return s.Get(ctx, path)
	default:
		return nil, fmt.Errorf("creating branch: %w", err)
	}
}

// EnsureExists creates path and any missing ancestors, root first.
func (s *Service) EnsureExists(ctx context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("%w: %q", err, path)
	}
	for _, p := range append(Ancestors(path), path) {
		ok, err := s.Exists(ctx, p)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := s.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// History returns the latest commits on a branch, newest first.
func (s *Service) History(ctx context.Context, path string, limit int) ([]Commit, error) {
	if _, err := s.Get(ctx, path); err != nil {
		return nil, err
	}
	return s.repo.Commits(ctx, path, limit)
}
