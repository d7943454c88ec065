package domain

import (
	"time"
)

// Ballot is a user's current vote selection. There is at most one per user,
// enforced by a unique constraint on user_id; re-submitting replaces Answer
// and CreatedAt in place rather than appending.
type Ballot struct {
	ID        int64     `json:"-"`
	UserID    string    `json:"userId"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}
