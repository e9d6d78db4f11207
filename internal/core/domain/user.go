package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	IsAdmin bool      `json:"is_admin"`
	// PasswordHash is a bcrypt hash, empty for users created by operators.
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Identity is the caller as established by the transport layer. The core
// trusts it as given.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// AccessToken is a verified bearer token. ID is the token's jti and is what
// logout revokes.
type AccessToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// Session is handed back by register and login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
