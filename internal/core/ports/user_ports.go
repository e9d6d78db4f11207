package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// Create fails with domain.ErrEmailTaken when the email is in use.
	Create(ctx context.Context, user *domain.User) error
	SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error
}

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// Identify resolves a user id into the caller identity the core trusts.
	Identify(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
}
