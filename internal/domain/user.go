package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered voter. VoteStatus is a denormalized hint that
// mirrors ballot existence; the ballot ledger stays the source of truth.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	VoteStatus   bool      `json:"voteStatus"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthClaims are the JWT claims issued at login.
type AuthClaims struct {
	UserID     string `json:"id"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	VoteStatus bool   `json:"voteStatus"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the authenticated caller carries the admin role.
func (c *AuthClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the sanitized user record.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateUserRequest carries the mutable user fields; nil means "leave as is".
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	VoteStatus *bool   `json:"voteStatus"`
}

// ListUsersQuery is the paging/search filter for the user listing.
type ListUsersQuery struct {
	Page  int
	Limit int
	Q     string
}

// UserListResponse is the paged user listing payload.
type UserListResponse struct {
	Items []User `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
