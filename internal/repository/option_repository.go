package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/pkg/database"
)

type PostgresOptionRepository struct {
	db *database.PostgresDB
}

func NewOptionRepository(db *database.PostgresDB) *PostgresOptionRepository {
	return &PostgresOptionRepository{db: db}
}

// GetByOptionID gets an option by its external id
func (r *PostgresOptionRepository) GetByOptionID(ctx context.Context, optionID string) (*domain.VoteOption, error) {
	var option domain.VoteOption
	query := `
		SELECT id, option_id, text, detail_text, is_main, created_at, updated_at
		FROM vote_options
		WHERE option_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, optionID).Scan(
		&option.ID,
		&option.OptionID,
		&option.Text,
		&option.DetailText,
		&option.IsMain,
		&option.CreatedAt,
		&option.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}

	return &option, nil
}

// Create persists a new option
func (r *PostgresOptionRepository) Create(ctx context.Context, option *domain.VoteOption) error {
	query := `
		INSERT INTO vote_options (option_id, text, detail_text, is_main)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		option.OptionID,
		option.Text,
		option.DetailText,
		option.IsMain,
	).Scan(&option.ID, &option.CreatedAt, &option.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}

	return nil
}

// ListMain returns all main options, earliest created first
func (r *PostgresOptionRepository) ListMain(ctx context.Context) ([]domain.VoteOption, error) {
	query := `
		SELECT id, option_id, text, detail_text, is_main, created_at, updated_at
		FROM vote_options
		WHERE is_main
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list main options: %w", err)
	}
	defer rows.Close()

	options := make([]domain.VoteOption, 0)
	for rows.Next() {
		var option domain.VoteOption
		err := rows.Scan(
			&option.ID,
			&option.OptionID,
			&option.Text,
			&option.DetailText,
			&option.IsMain,
			&option.CreatedAt,
			&option.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, option)
	}

	return options, rows.Err()
}

// EnsureMainOption inserts a main option unless equivalent text already
// exists. The partial unique index on (lower(text)) WHERE is_main makes this
// safe under concurrent process startup.
func (r *PostgresOptionRepository) EnsureMainOption(ctx context.Context, option *domain.VoteOption) error {
	query := `
		INSERT INTO vote_options (option_id, text, detail_text, is_main)
		VALUES ($1, trim($2), trim($3), TRUE)
		ON CONFLICT ((lower(text))) WHERE is_main DO NOTHING
	`

	_, err := r.db.Pool.Exec(ctx, query, option.OptionID, option.Text, option.DetailText)
	if err != nil {
		return fmt.Errorf("failed to ensure main option: %w", err)
	}

	return nil
}

// CountVotesPerOption joins every option against the ballot ledger. A left
// join keeps zero-vote options in the result.
func (r *PostgresOptionRepository) CountVotesPerOption(ctx context.Context) ([]domain.OptionTally, error) {
	query := `
		SELECT o.id, o.option_id, o.text, o.detail_text, o.is_main,
		       o.created_at, o.updated_at, COUNT(v.id) AS votes
		FROM vote_options o
		LEFT JOIN votes v ON v.answer = o.option_id
		GROUP BY o.id, o.option_id, o.text, o.detail_text, o.is_main, o.created_at, o.updated_at
		ORDER BY o.is_main DESC, votes DESC, o.created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes per option: %w", err)
	}
	defer rows.Close()

	tallies := make([]domain.OptionTally, 0)
	for rows.Next() {
		var tally domain.OptionTally
		err := rows.Scan(
			&tally.ID,
			&tally.OptionID,
			&tally.Text,
			&tally.DetailText,
			&tally.IsMain,
			&tally.CreatedAt,
			&tally.UpdatedAt,
			&tally.Votes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option tally: %w", err)
		}
		tallies = append(tallies, tally)
	}

	return tallies, rows.Err()
}
