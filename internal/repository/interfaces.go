package repository

import (
	"context"
	"time"

	"github.com/danangwn/vote-app-backend/internal/domain"
)

// OptionRepository defines the interface for vote option storage
type OptionRepository interface {
	// GetByOptionID retrieves an option by its external id, nil when absent
	GetByOptionID(ctx context.Context, optionID string) (*domain.VoteOption, error)

	// Create persists a new option and fills in the storage-managed fields
	Create(ctx context.Context, option *domain.VoteOption) error

	// ListMain returns all main options ordered by creation time ascending
	ListMain(ctx context.Context) ([]domain.VoteOption, error)

	// EnsureMainOption inserts a main option unless one with equivalent text
	// already exists (case-insensitive); safe to call concurrently
	EnsureMainOption(ctx context.Context, option *domain.VoteOption) error

	// CountVotesPerOption returns every option joined with its ballot count,
	// ordered main-first, then votes descending, then creation time ascending
	CountVotesPerOption(ctx context.Context) ([]domain.OptionTally, error)
}

// BallotRepository defines the interface for the one-ballot-per-user ledger
type BallotRepository interface {
	// CastOrReplace atomically inserts the user's ballot or overwrites the
	// existing one, returning the post-write state
	CastOrReplace(ctx context.Context, userID, optionID string) (*domain.Ballot, error)

	// HasVoted reports whether a ballot exists for the user
	HasVoted(ctx context.Context, userID string) (bool, error)

	// CountAll returns the total number of ballots cast
	CountAll(ctx context.Context) (int, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, query domain.ListUsersQuery) ([]domain.User, int, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, user *domain.User) error
	SetVoteStatus(ctx context.Context, id string, status bool) error

	// Delete removes a user and returns the deleted record, nil when absent
	Delete(ctx context.Context, id string) (*domain.User, error)
}

// TokenRepository defines the interface for the revoked-token store
type TokenRepository interface {
	Blacklist(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, tokenHash string) (bool, error)
}
