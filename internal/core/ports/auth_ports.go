package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

// AuthRepository remembers access tokens revoked before they expire.
type AuthRepository interface {
	RevokeToken(ctx context.Context, token *domain.AccessToken) error
	IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error)
}

type TokenService interface {
	IssueForEmail(ctx context.Context, email, name string, admin bool) (string, *domain.User, error)
	Issue(user *domain.User, ttl time.Duration) (string, error)
	// Parse fails with domain.ErrInvalidToken for bad, expired and revoked
	// tokens.
	Parse(ctx context.Context, token string) (*domain.AccessToken, error)
}

type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation *string
	WrongType            []string
}

type LoginInput struct {
	Email     string
	Password  string
	WrongType []string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Session, error)
	Login(ctx context.Context, input LoginInput) (*domain.Session, error)
	Logout(ctx context.Context, token *domain.AccessToken) error
}
