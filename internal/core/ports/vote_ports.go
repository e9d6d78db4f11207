package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

type VoteRepository interface {
	// SaveVote must fail with domain.ErrAlreadyVoted when the (user, poll)
	// pair already exists, whatever check the caller ran before.
	SaveVote(ctx context.Context, vote *domain.Vote) error
	HasVoted(ctx context.Context, pollID, userID uuid.UUID) (bool, error)
	CountByOption(ctx context.Context, pollID uuid.UUID) (map[string]int64, error)
}

type VoteInput struct {
	PollID         string
	Voter          *domain.Identity
	SelectedOption string
	WrongType      []string
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*domain.Vote, error)
}

type ResultService interface {
	Tally(ctx context.Context, pollID string) (domain.Tally, error)
}
