package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// querier is satisfied by both *DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	commitKindCreate    = "create"
	commitKindContent   = "content"
	commitKindRebase    = "rebase"
	commitKindPromotion = "promotion"
)

// insertCommit allocates the next tick for a change on branchPath.
func insertCommit(ctx context.Context, q querier, branchPath, kind, sourcePath, message string) (int64, error) {
	query := `
		INSERT INTO commits (id, branch_path, kind, source_path, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query,
		uuid.NewString(),
		branchPath,
		kind,
		nullString(sourcePath),
		message,
		time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert commit: %w", err)
	}

	tick, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read commit tick: %w", err)
	}
	return tick, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
