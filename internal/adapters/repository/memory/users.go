package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

// Users is the user table of a Store. It is a separate type because the
// user and poll repositories share method names.
type Users struct {
	store *Store
}

func (s *Store) Users() *Users {
	return &Users{store: s}
}

func (u *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	id, ok := u.store.emails[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	user := u.store.users[id]
	return &user, nil
}

func (u *Users) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	user, ok := u.store.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	email := normalizeEmail(user.Email)
	if _, taken := u.store.emails[email]; taken {
		return domain.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	u.store.users[user.ID] = *user
	u.store.emails[email] = user.ID
	return nil
}

func (u *Users) SetAdmin(_ context.Context, id uuid.UUID, admin bool) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	user, ok := u.store.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsAdmin = admin
	u.store.users[id] = user
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ ports.UserRepository = (*Users)(nil)
