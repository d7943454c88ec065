package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/internal/repository"
	apperrors "github.com/danangwn/vote-app-backend/pkg/errors"
)

// UserService handles user listing, updates and the guarded hard delete.
type UserService struct {
	users   repository.UserRepository
	ballots repository.BallotRepository
	logger  *zap.Logger
}

func NewUserService(users repository.UserRepository, ballots repository.BallotRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:   users,
		ballots: ballots,
		logger:  logger,
	}
}

// List returns a page of users. Admin only.
func (s *UserService) List(ctx context.Context, actor *domain.AuthClaims, query domain.ListUsersQuery) (*domain.UserListResponse, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("Admin privilege required")
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	users, total, err := s.users.List(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list users", err)
	}

	return &domain.UserListResponse{
		Items: users,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

// Get returns a single user. Admins can fetch anyone; others only themselves.
func (s *UserService) Get(ctx context.Context, actor *domain.AuthClaims, id string) (*domain.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, apperrors.NewAuthorizationError("Not allowed to view this user")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	return user, nil
}

// Update applies the provided fields to a user. Admins can edit anyone;
// others only themselves.
func (s *UserService) Update(ctx context.Context, actor *domain.AuthClaims, id string, req *domain.UpdateUserRequest) (*domain.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, apperrors.NewAuthorizationError("Not allowed to edit this user")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("Name is required")
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !strings.Contains(email, "@") {
			return nil, apperrors.NewValidationError("Valid email required")
		}
		user.Email = email
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, apperrors.NewValidationError("Password min 6 chars")
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to hash password", err)
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		if *req.Role != domain.RoleUser && *req.Role != domain.RoleAdmin {
			return nil, apperrors.NewValidationError("Role must be admin or user")
		}
		user.Role = *req.Role
	}
	if req.VoteStatus != nil {
		user.VoteStatus = *req.VoteStatus
	}

	if err := s.users.Update(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewConflictError("Email already in use", err)
		}
		return nil, apperrors.NewInternalError("Failed to update user", err)
	}

	s.logger.Info("User updated",
		zap.String("user_id", id),
		zap.String("actor_id", actor.UserID))

	return user, nil
}

// Delete hard-deletes a user. Admin only, never yourself, and never a user
// who has already cast a ballot; the ledger is checked directly rather than
// trusting the denormalized vote_status flag.
func (s *UserService) Delete(ctx context.Context, actor *domain.AuthClaims, id string) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("Admin privilege required to delete user")
	}
	if actor.UserID == id {
		return nil, apperrors.NewAuthorizationError("You cannot delete your own account")
	}

	voted, err := s.ballots.HasVoted(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to check vote status", err)
	}
	if voted {
		return nil, apperrors.NewValidationError("Cannot delete user who has already voted")
	}

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to delete user", err)
	}
	if deleted == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	s.logger.Info("User deleted",
		zap.String("user_id", id),
		zap.String("actor_id", actor.UserID))

	return deleted, nil
}
