package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/danangwn/vote-app-backend/pkg/database"
)

type PostgresTokenRepository struct {
	db *database.PostgresDB
}

func NewTokenRepository(db *database.PostgresDB) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

// Blacklist records a revoked token hash until its expiry
func (r *PostgresTokenRepository) Blacklist(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO blacklisted_tokens (token_hash, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_hash) DO NOTHING
	`

	if _, err := r.db.Pool.Exec(ctx, query, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// IsBlacklisted reports whether a token hash has been revoked and has not
// yet expired out of the blacklist
func (r *PostgresTokenRepository) IsBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM blacklisted_tokens WHERE token_hash = $1 AND expires_at > now())`

	if err := r.db.Pool.QueryRow(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return exists, nil
}
