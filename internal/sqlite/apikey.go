package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/authoring-mirror/internal/repository"
)

// ErrInvalidToken indicates a bearer token with no matching API key.
var ErrInvalidToken = errors.New("invalid token")

// APIKeyRepository stores hashed API keys and resolves them to operators.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Add stores the hash of token for operator
func (r *APIKeyRepository) Add(ctx context.Context, token, operator, description string) error {
	if token == "" || operator == "" {
		return repository.ErrInvalidInput
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, operator, created_at, description) VALUES (?, ?, ?, ?)`,
		hashToken(token), operator, time.Now(), nullString(description),
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolveOperator returns the operator owning token and stamps its last use
func (r *APIKeyRepository) ResolveOperator(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)
	var operator string
	err := r.db.QueryRowContext(ctx, `SELECT operator FROM api_keys WHERE key_hash = ?`, hash).Scan(&operator)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && operator == "") {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now(), hash); err != nil {
		return "", fmt.Errorf("failed to stamp api key: %w", err)
	}
	return operator, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
