package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/authoring-mirror/internal/domain/journal"
)

// JournalRepository implements journal.Repository for SQLite
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Log inserts a new journal entry
func (r *JournalRepository) Log(ctx context.Context, entry *journal.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO mirror_journal (
			id, outcome, branch_path, source_path, target_path,
			concept_count, comment, origin, line, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Outcome,
		entry.BranchPath,
		nullString(entry.SourcePath),
		nullString(entry.TargetPath),
		entry.ConceptCount,
		entry.Comment,
		entry.Origin,
		entry.Line,
		createdAt,
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to log journal entry: %w", err)
	}

	entry.CreatedAt = createdAt
	return nil
}

// List returns journal entries matching the given filters, newest first
func (r *JournalRepository) List(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error) {
	query := `
		SELECT
			id, outcome, branch_path, source_path, target_path,
			concept_count, comment, origin, line, created_at
		FROM mirror_journal
	`

	var args []any
	var conditions []string

	if opts.BranchPath != "" {
		conditions = append(conditions, "branch_path = ?")
		args = append(args, opts.BranchPath)
	}
	if opts.Outcome != nil {
		conditions = append(conditions, "outcome = ?")
		args = append(args, *opts.Outcome)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY seq DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var entry journal.Entry
		var source, target sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.Outcome,
			&entry.BranchPath,
			&source,
			&target,
			&entry.ConceptCount,
			&entry.Comment,
			&entry.Origin,
			&entry.Line,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entry.SourcePath = source.String
		entry.TargetPath = target.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	return entries, nil
}
