package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/pkg/database"
)

type PostgresUserRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create persists a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, role, password_hash, vote_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.PasswordHash,
		user.VoteStatus,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID gets a user by id
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail gets a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, name, email, role, password_hash, vote_status, created_at, updated_at
		FROM users ` + where

	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.PasswordHash,
		&user.VoteStatus,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// List returns a page of users plus the total matching count. The q filter
// searches name and email case-insensitively.
func (r *PostgresUserRepository) List(ctx context.Context, query domain.ListUsersQuery) ([]domain.User, int, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	where := ""
	args := []interface{}{}
	if query.Q != "" {
		where = `WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+query.Q+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users ` + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, name, email, role, password_hash, vote_status, created_at, updated_at
		FROM users %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		var user domain.User
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.PasswordHash,
			&user.VoteStatus,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}

// Count returns the total number of users
func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Update overwrites the mutable user columns
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, password_hash = $5, vote_status = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.PasswordHash,
		user.VoteStatus,
	).Scan(&user.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("user %s not found", user.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// SetVoteStatus flips the denormalized has-voted flag
func (r *PostgresUserRepository) SetVoteStatus(ctx context.Context, id string, status bool) error {
	query := `UPDATE users SET vote_status = $2, updated_at = now() WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id, status); err != nil {
		return fmt.Errorf("failed to set vote status: %w", err)
	}

	return nil
}

// Delete removes a user and returns the deleted record, nil when absent
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	query := `DELETE FROM users WHERE id = $1 RETURNING id, name, email, role`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return &user, nil
}
