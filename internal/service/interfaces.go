package service

import (
	"context"

	"github.com/danangwn/vote-app-backend/internal/domain"
)

// TokenValidator validates a bearer token and returns the caller's claims.
// Implemented by AuthService; consumed by the auth middleware.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error)
}
