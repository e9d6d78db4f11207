package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const pollColumns = `id, question, description, options, closes_at, deleted_at, created_at, updated_at`

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	query := `
		INSERT INTO polls (id, question, description, options, closes_at, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		poll.ID, poll.Question, poll.Description, optionsArray(poll.Options),
		poll.ClosesAt, poll.DeletedAt, poll.CreatedAt, poll.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert poll")
	}
	return nil
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	query := `
		UPDATE polls
		SET question = $2, description = $3, options = $4, closes_at = $5, deleted_at = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		poll.ID, poll.Question, poll.Description, optionsArray(poll.Options),
		poll.ClosesAt, poll.DeletedAt, poll.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update poll")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID, visibility domain.Visibility) (*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1 AND ` + visibilityClause(visibility)

	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, errors.Wrap(err, "failed to get poll")
	}
	return poll, nil
}

func (r *pollRepository) List(ctx context.Context, visibility domain.Visibility) ([]*domain.Poll, error) {
	order := `created_at DESC, id`
	if visibility == domain.OnlyTrashed {
		order = `deleted_at DESC, id`
	}
	query := `SELECT ` + pollColumns + ` FROM polls WHERE ` + visibilityClause(visibility) + ` ORDER BY ` + order

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list polls")
	}
	defer rows.Close()

	polls := []*domain.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan poll")
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating polls")
	}
	return polls, nil
}

func (r *pollRepository) ForceDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE poll_id = $1`, id); err != nil {
		return errors.Wrap(err, "failed to delete poll votes")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete poll")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrPollNotFound
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var poll domain.Poll
	var options pq.StringArray
	err := row.Scan(
		&poll.ID, &poll.Question, &poll.Description, &options,
		&poll.ClosesAt, &poll.DeletedAt, &poll.CreatedAt, &poll.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	poll.Options = []string(options)
	if poll.Options == nil {
		poll.Options = []string{}
	}
	return &poll, nil
}

func visibilityClause(visibility domain.Visibility) string {
	switch visibility {
	case domain.OnlyActive:
		return `deleted_at IS NULL`
	case domain.OnlyTrashed:
		return `deleted_at IS NOT NULL`
	default:
		return `TRUE`
	}
}

func optionsArray(options []string) pq.StringArray {
	if options == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(options)
}
