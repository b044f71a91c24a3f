package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/authoring-mirror/internal/domain/merge"
)

// MergeRepository implements merge.Repository for SQLite
type MergeRepository struct {
	db *DB
}

// NewMergeRepository creates a new MergeRepository
func NewMergeRepository(db *DB) *MergeRepository {
	return &MergeRepository{db: db}
}

// Rebase records a rebase commit on target and moves its base to that tick.
// Nothing is copied: target resolves parent versions through its new base.
func (r *MergeRepository) Rebase(ctx context.Context, source, target, message string) (merge.Result, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return merge.Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getBranch(ctx, tx, source); err != nil {
		return merge.Result{}, err
	}
	if _, err := getBranch(ctx, tx, target); err != nil {
		return merge.Result{}, err
	}

	tick, err := insertCommit(ctx, tx, target, commitKindRebase, source, message)
	if err != nil {
		return merge.Result{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE branches SET base_tick = ?, head_tick = ? WHERE path = ?`,
		tick, tick, target,
	); err != nil {
		return merge.Result{}, fmt.Errorf("failed to rebase branch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return merge.Result{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return merge.Result{
		Kind:    merge.KindRebase,
		Source:  source,
		Target:  target,
		Tick:    tick,
		Message: message,
	}, nil
}

// Promote copies the latest version of every concept source changed since
// its last promotion onto target. Source is then in sync with target at the
// promotion tick.
func (r *MergeRepository) Promote(ctx context.Context, source, target, message string) (merge.Result, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return merge.Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	src, err := getBranch(ctx, tx, source)
	if err != nil {
		return merge.Result{}, err
	}
	if _, err := getBranch(ctx, tx, target); err != nil {
		return merge.Result{}, err
	}

	changed, err := queryConcepts(ctx, tx, source, `
		SELECT c.concept_id, c.tick, c.body, c.updated_at
		FROM concepts c
		WHERE c.branch_path = ? AND c.tick > ? AND c.tick = (
			SELECT MAX(v.tick) FROM concepts v
			WHERE v.branch_path = c.branch_path AND v.concept_id = c.concept_id
		)
		ORDER BY c.concept_id
	`, source, src.PromotedTick)
	if err != nil {
		return merge.Result{}, err
	}

	tick, err := insertCommit(ctx, tx, target, commitKindPromotion, source, message)
	if err != nil {
		return merge.Result{}, err
	}

	insert := `
		INSERT INTO concepts (branch_path, concept_id, tick, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	for _, c := range changed {
		if _, err := tx.ExecContext(ctx, insert, target, c.ID, tick, string(c.Body), now); err != nil {
			return merge.Result{}, fmt.Errorf("failed to promote concept %s: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE branches SET head_tick = ? WHERE path = ?`, tick, target); err != nil {
		return merge.Result{}, fmt.Errorf("failed to advance branch head: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE branches SET base_tick = ?, promoted_tick = ? WHERE path = ?`,
		tick, tick, source,
	); err != nil {
		return merge.Result{}, fmt.Errorf("failed to mark branch promoted: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return merge.Result{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return merge.Result{
		Kind:    merge.KindPromotion,
		Source:  source,
		Target:  target,
		Tick:    tick,
		Copied:  len(changed),
		Message: message,
	}, nil
}

// Unpromoted counts the concepts source edited since its last promotion.
func (r *MergeRepository) Unpromoted(ctx context.Context, source string) (int, error) {
	src, err := getBranch(ctx, r.db, source)
	if err != nil {
		return 0, err
	}

	var n int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT concept_id) FROM concepts WHERE branch_path = ? AND tick > ?`,
		source, src.PromotedTick,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpromoted concepts: %w", err)
	}
	return n, nil
}
