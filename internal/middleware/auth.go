package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/internal/service"
	"github.com/danangwn/vote-app-backend/pkg/errors"
	"github.com/danangwn/vote-app-backend/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for the authenticated caller's claims
	UserContextKey ContextKey = "user"
	// TokenContextKey is the key for the raw bearer token
	TokenContextKey ContextKey = "token"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Auth creates an authentication middleware
func Auth(validator service.TokenValidator, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Authorization token missing"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Token is required"), logger)
				return
			}

			ctx := r.Context()
			claims, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WithError(err).Warn("Token validation failed")
				if appErr, ok := errors.AsAppError(err); ok {
					writeErrorResponse(w, appErr, logger)
				} else {
					writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				}
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, claims)
			ctx = context.WithValue(ctx, TokenContextKey, token)
			r = r.WithContext(ctx)

			logger.WithField("user_id", claims.UserID).Debug("User authenticated successfully")

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the authenticated caller's claims, if any.
func ClaimsFromContext(ctx context.Context) (*domain.AuthClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*domain.AuthClaims)
	return claims, ok && claims != nil
}

// TokenFromContext returns the raw bearer token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenContextKey).(string)
	return token, ok && token != ""
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if err := json.NewEncoder(w).Encode(map[string]string{"message": appErr.Message}); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}
