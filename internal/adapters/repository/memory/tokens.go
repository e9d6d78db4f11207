package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

// RevokeToken also forgets revocations whose tokens have expired anyway.
func (s *Store) RevokeToken(_ context.Context, token *domain.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, expiresAt := range s.revoked {
		if expiresAt.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[token.ID] = token.ExpiresAt
	return nil
}

func (s *Store) IsRevoked(_ context.Context, tokenID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}

var _ ports.AuthRepository = (*Store)(nil)
