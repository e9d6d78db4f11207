package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type AuthRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) ports.AuthRepository {
	return &AuthRepository{db: db}
}

// RevokeToken records the token id until it expires. Revoking twice is a
// no-op, and rows of already expired tokens are cleared on the way.
func (r *AuthRepository) RevokeToken(ctx context.Context, token *domain.AccessToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < NOW()`); err != nil {
		return errors.Wrap(err, "failed to prune revoked tokens")
	}

	query := `
		INSERT INTO revoked_tokens (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, token.ID, token.UserID, token.ExpiresAt); err != nil {
		if _, ok := violatedForeignKey(err); ok {
			return domain.ErrUserNotFound
		}
		return errors.Wrap(err, "failed to revoke token")
	}

	return errors.Wrap(tx.Commit(), "failed to commit revocation")
}

func (r *AuthRepository) IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE id = $1)`, tokenID).Scan(&revoked)
	if err != nil {
		return false, errors.Wrap(err, "failed to check revoked token")
	}
	return revoked, nil
}
