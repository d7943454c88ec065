package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/internal/repository"
	apperrors "github.com/danangwn/vote-app-backend/pkg/errors"
)

const bcryptCost = 10

// AuthService handles registration, login and token lifecycle. Tokens are
// HS256 JWTs; revoked tokens are blacklisted by hash until they expire.
type AuthService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	cache  *CacheService
	secret []byte
	expiry time.Duration
	logger *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	cache *CacheService,
	secret string,
	expiry time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cache:  cache,
		secret: []byte(secret),
		expiry: expiry,
		logger: logger,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to check existing user", err)
	}
	if existing != nil {
		return nil, apperrors.NewValidationError("Email already in use")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the lookup above; the
		// unique constraint on email reports it as 23505.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewValidationError("Email already in use")
		}
		return nil, apperrors.NewInternalError("Failed to create user", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role))

	return user, nil
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Email and password required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewValidationError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NewValidationError("Invalid credentials")
	}

	now := time.Now()
	claims := &domain.AuthClaims{
		UserID:     user.ID,
		Role:       user.Role,
		Name:       user.Name,
		Email:      user.Email,
		VoteStatus: user.VoteStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to sign token", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))

	return &domain.LoginResponse{Token: token, User: user}, nil
}

// Logout blacklists the presented token until its expiry. Tokens without a
// readable expiry are blacklisted for one hour.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.NewValidationError("Token required")
	}

	expiresAt := time.Now().Add(time.Hour)
	claims := &domain.AuthClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	hash := hashToken(token)
	if err := s.tokens.Blacklist(ctx, hash, expiresAt); err != nil {
		return apperrors.NewInternalError("Failed to revoke token", err)
	}

	s.cache.CacheTokenBlacklist(ctx, hash, time.Until(expiresAt))

	return nil
}

// ValidateToken checks the blacklist and verifies the signature and expiry,
// returning the embedded claims.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	hash := hashToken(token)

	revoked := s.cache.IsTokenBlacklisted(ctx, hash)
	if !revoked {
		var err error
		revoked, err = s.tokens.IsBlacklisted(ctx, hash)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to check token blacklist", err)
		}
	}
	if revoked {
		return nil, apperrors.NewAuthenticationError("Token is invalidated (logged out)")
	}

	claims := &domain.AuthClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.NewAuthenticationError("Invalid or expired token")
	}

	return claims, nil
}

func validateRegisterRequest(req *domain.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("Name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return apperrors.NewValidationError("Valid email required")
	}
	if len(req.Password) < 6 {
		return apperrors.NewValidationError("Password min 6 chars")
	}
	if req.Role != "" && req.Role != domain.RoleUser && req.Role != domain.RoleAdmin {
		return apperrors.NewValidationError("Role must be admin or user")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
