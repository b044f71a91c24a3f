package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/repository"
)

// ConceptRepository implements concept.Repository and concept.SearchRepository for SQLite
type ConceptRepository struct {
	db *DB
}

// NewConceptRepository creates a new ConceptRepository
func NewConceptRepository(db *DB) *ConceptRepository {
	return &ConceptRepository{db: db}
}

// Commit stores a batch of concept versions on a branch under one new tick
func (r *ConceptRepository) Commit(ctx context.Context, branchPath string, concepts []concept.Concept, message string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getBranch(ctx, tx, branchPath); err != nil {
		return 0, err
	}

	tick, err := insertCommit(ctx, tx, branchPath, commitKindContent, "", message)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO concepts (branch_path, concept_id, tick, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, c := range concepts {
		updatedAt := c.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		if _, err := tx.ExecContext(ctx, query, branchPath, c.ID, tick, string(c.Body), updatedAt); err != nil {
			if mapped := mapConstraintError(err); mapped != err {
				return 0, mapped
			}
			return 0, fmt.Errorf("failed to insert concept %s: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE branches SET head_tick = ? WHERE path = ?`, tick, branchPath); err != nil {
		return 0, fmt.Errorf("failed to advance branch head: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tick, nil
}

// Get resolves the version of a concept visible on a branch
func (r *ConceptRepository) Get(ctx context.Context, branchPath, id string) (*concept.Concept, error) {
	chain, err := loadChain(ctx, r.db, branchPath)
	if err != nil {
		return nil, err
	}
	return resolveConcept(ctx, r.db, chain, id)
}

// List resolves every concept visible on a branch, ordered by id
func (r *ConceptRepository) List(ctx context.Context, branchPath string) ([]concept.Concept, error) {
	chain, err := loadChain(ctx, r.db, branchPath)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT c.concept_id, c.tick, c.body, c.updated_at
		FROM concepts c
		WHERE c.branch_path = ? AND c.tick = (
			SELECT MAX(v.tick) FROM concepts v
			WHERE v.branch_path = c.branch_path AND v.concept_id = c.concept_id AND v.tick <= ?
		)
	`

	seen := make(map[string]bool)
	var out []concept.Concept
	for _, link := range chain {
		found, err := queryConcepts(ctx, r.db, link.path, query, link.path, link.limit)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// chainLink is a branch whose versions are visible up to limit.
type chainLink struct {
	path  string
	limit int64
}

// loadChain walks from branchPath to the root. A branch sees its own
// versions, then its parent's versions up to its base tick, and so on.
func loadChain(ctx context.Context, q querier, branchPath string) ([]chainLink, error) {
	var chain []chainLink
	limit := int64(math.MaxInt64)
	for path := branchPath; path != ""; path = branch.ParentPath(path) {
		b, err := getBranch(ctx, q, path)
		if err != nil {
			return nil, err
		}
		chain = append(chain, chainLink{path: path, limit: limit})
		limit = min(limit, b.BaseTick)
	}
	return chain, nil
}

func resolveConcept(ctx context.Context, q querier, chain []chainLink, id string) (*concept.Concept, error) {
	query := `
		SELECT concept_id, tick, body, updated_at
		FROM concepts
		WHERE branch_path = ? AND concept_id = ? AND tick <= ?
		ORDER BY tick DESC
		LIMIT 1
	`
	for _, link := range chain {
		found, err := queryConcepts(ctx, q, link.path, query, link.path, id, link.limit)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return &found[0], nil
		}
	}
	return nil, repository.ErrNotFound
}

func queryConcepts(ctx context.Context, q querier, branchPath, query string, args ...any) ([]concept.Concept, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	defer rows.Close()

	var out []concept.Concept
	for rows.Next() {
		var c concept.Concept
		var body string
		if err := rows.Scan(&c.ID, &c.Tick, &body, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan concept: %w", err)
		}
		c.BranchPath = branchPath
		c.Body = []byte(body)
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating concept rows: %w", err)
	}

	return out, nil
}
