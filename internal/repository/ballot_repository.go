package repository

import (
	"context"
	"fmt"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/pkg/database"
)

type PostgresBallotRepository struct {
	db *database.PostgresDB
}

func NewBallotRepository(db *database.PostgresDB) *PostgresBallotRepository {
	return &PostgresBallotRepository{db: db}
}

// CastOrReplace records the user's ballot in a single atomic upsert. The
// unique constraint on user_id guarantees at most one ballot per user; two
// concurrent submissions converge on one of the two answers without ever
// producing a second row.
func (r *PostgresBallotRepository) CastOrReplace(ctx context.Context, userID, optionID string) (*domain.Ballot, error) {
	var ballot domain.Ballot
	query := `
		INSERT INTO votes (user_id, answer, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET answer = EXCLUDED.answer, created_at = EXCLUDED.created_at
		RETURNING id, user_id, answer, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, userID, optionID).Scan(
		&ballot.ID,
		&ballot.UserID,
		&ballot.Answer,
		&ballot.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to cast ballot: %w", err)
	}

	return &ballot, nil
}

// HasVoted reports whether a ballot exists for the user
func (r *PostgresBallotRepository) HasVoted(ctx context.Context, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM votes WHERE user_id = $1)`

	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check ballot existence: %w", err)
	}

	return exists, nil
}

// CountAll returns the total number of ballots cast
func (r *PostgresBallotRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM votes`

	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ballots: %w", err)
	}

	return count, nil
}
