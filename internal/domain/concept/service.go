package concept

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/repository"
)

// Service handles concept operations.
type Service struct {
	repo   Repository
	search SearchRepository
	logger *slog.Logger
}

// NewService creates a new concept service. search may be nil.
func NewService(repo Repository, search SearchRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, search: search, logger: logger}
}

// Update applies a batch of edited documents to branchPath as one commit.
// The order of docs is irrelevant; a document id repeated in the batch keeps
// its last occurrence.
func (s *Service) Update(ctx context.Context, docs []Document, branchPath string) error {
	if len(docs) == 0 {
		return nil
	}

	byID := make(map[string]Concept, len(docs))
	now := time.Now()
	for i, doc := range docs {
		id, err := DocumentID(doc)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		byID[id] = Concept{
			ID:         id,
			BranchPath: branchPath,
			Body:       doc,
			UpdatedAt:  now,
		}
	}

	concepts := make([]Concept, 0, len(byID))
	for _, c := range byID {
		concepts = append(concepts, c)
	}
	sort.Slice(concepts, func(i, j int) bool { return concepts[i].ID < concepts[j].ID })

	tick, err := s.repo.Commit(ctx, branchPath, concepts, commitMessage(concepts))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: %s", branch.ErrBranchNotFound, branchPath)
		}
		return fmt.Errorf("updating concepts: %w", err)
	}

	s.logger.Debug("concepts committed", "branch", branchPath, "count", len(concepts), "tick", tick)
	return nil
}

// Get fetches the concept version visible on branchPath.
func (s *Service) Get(ctx context.Context, branchPath, id string) (*Concept, error) {
	c, err := s.repo.Get(ctx, branchPath, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConceptNotFound
		}
		return nil, fmt.Errorf("getting concept: %w", err)
	}
	return c, nil
}

// List returns every concept visible on branchPath.
func (s *Service) List(ctx context.Context, branchPath string) ([]Concept, error) {
	concepts, err := s.repo.List(ctx, branchPath)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", branch.ErrBranchNotFound, branchPath)
		}
		return nil, fmt.Errorf("listing concepts: %w", err)
	}
	return concepts, nil
}

// Search runs a full-text query over concepts visible on branchPath.
func (s *Service) Search(ctx context.Context, branchPath, query string, opts SearchOptions) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, repository.ErrInvalidInput
	}
	if s.search == nil {
		return nil, errors.New("search not configured")
	}
	return s.search.Search(ctx, branchPath, query, opts)
}

func commitMessage(concepts []Concept) string {
	if len(concepts) == 1 {
		return "update concept " + concepts[0].ID
	}
	return fmt.Sprintf("update %d concepts", len(concepts))
}
