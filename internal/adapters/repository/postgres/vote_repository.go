package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, user_id, poll_id, selected_option, voted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		vote.ID, vote.UserID, vote.PollID, vote.SelectedOption,
		vote.VotedAt, vote.CreatedAt, vote.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyVoted
		}
		if constraint, ok := violatedForeignKey(err); ok {
			if constraint == "votes_user_id_fkey" {
				return domain.ErrUserNotFound
			}
			return domain.ErrPollNotFound
		}
		return errors.Wrap(err, "failed to save vote")
	}
	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, pollID, userID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to check existing vote")
	}
	return true, nil
}

func (r *voteRepository) CountByOption(ctx context.Context, pollID uuid.UUID) (map[string]int64, error) {
	query := `
		SELECT selected_option, COUNT(*)
		FROM votes
		WHERE poll_id = $1
		GROUP BY selected_option
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count votes")
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var option string
		var n int64
		if err := rows.Scan(&option, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan vote count")
		}
		counts[option] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating vote counts")
	}
	return counts, nil
}
