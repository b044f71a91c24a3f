package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/repository"
)

// BranchRepository implements branch.Repository for SQLite
type BranchRepository struct {
	db *DB
}

// NewBranchRepository creates a new BranchRepository
func NewBranchRepository(db *DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// Create records a creation commit and inserts the branch based at that tick
func (r *BranchRepository) Create(ctx context.Context, path string) (*branch.Branch, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	parent := branch.ParentPath(path)
	tick, err := insertCommit(ctx, tx, path, commitKindCreate, parent, "create branch "+path)
	if err != nil {
		return nil, err
	}

	b := &branch.Branch{
		Path:      path,
		Parent:    parent,
		BaseTick:     tick,
		HeadTick:     tick,
		PromotedTick: tick,
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO branches (path, parent_path, base_tick, head_tick, promoted_tick, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, b.Path, nullString(b.Parent), b.BaseTick, b.HeadTick, b.PromotedTick, b.CreatedAt); err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return b, nil
}

// Get retrieves a branch by path
func (r *BranchRepository) Get(ctx context.Context, path string) (*branch.Branch, error) {
	return getBranch(ctx, r.db, path)
}

// List returns every branch ordered by path
func (r *BranchRepository) List(ctx context.Context) ([]branch.Branch, error) {
	query := `
		SELECT path, parent_path, base_tick, head_tick, promoted_tick, created_at
		FROM branches
		ORDER BY path
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branch rows: %w", err)
	}

	return branches, nil
}

// Commits returns the most recent commits on a branch, newest first
func (r *BranchRepository) Commits(ctx context.Context, path string, limit int) ([]branch.Commit, error) {
	query := `
		SELECT tick, id, branch_path, kind, source_path, message, created_at
		FROM commits
		WHERE branch_path = ?
		ORDER BY tick DESC
	`
	args := []any{path}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	defer rows.Close()

	var commits []branch.Commit
	for rows.Next() {
		var c branch.Commit
		var source sql.NullString
		if err := rows.Scan(&c.Tick, &c.ID, &c.BranchPath, &c.Kind, &source, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		c.SourcePath = source.String
		commits = append(commits, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit rows: %w", err)
	}

	return commits, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBranch(row rowScanner) (*branch.Branch, error) {
	var b branch.Branch
	var parent sql.NullString
	if err := row.Scan(&b.Path, &parent, &b.BaseTick, &b.HeadTick, &b.PromotedTick, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Parent = parent.String
	return &b, nil
}

func getBranch(ctx context.Context, q querier, path string) (*branch.Branch, error) {
	query := `
		SELECT path, parent_path, base_tick, head_tick, promoted_tick, created_at
		FROM branches
		WHERE path = ?
	`

	b, err := scanBranch(q.QueryRowContext(ctx, query, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return b, nil
}
