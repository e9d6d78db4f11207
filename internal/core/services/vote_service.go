package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type voteService struct {
	pollRepo ports.PollRepository
	voteRepo ports.VoteRepository
	now      ports.Clock
}

func NewVoteService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository, clock ports.Clock) ports.VoteService {
	if clock == nil {
		clock = time.Now
	}
	return &voteService{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
		now:      clock,
	}
}

// Vote runs its checks in a fixed order and reports the first failure.
func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Vote, error) {
	pollID, err := uuid.Parse(input.PollID)
	if err != nil {
		return nil, domain.ErrPollNotFound
	}
	poll, err := s.pollRepo.GetByID(ctx, pollID, domain.OnlyActive)
	if err != nil {
		return nil, err
	}

	if input.Voter == nil {
		return nil, domain.ErrUnauthorized
	}

	if verr := domain.NewValidationError(); typeErrors(verr, input.WrongType)["selected_option"] {
		return nil, verr
	}
	if input.SelectedOption == "" {
		return nil, domain.FieldError(nil, "selected_option", "The selected option field is required.")
	}

	now := s.now().UTC()
	if poll.IsClosed(now) {
		return nil, domain.ErrPollClosed
	}

	if !poll.HasOption(input.SelectedOption) {
		return nil, domain.FieldError(domain.ErrInvalidOption, "selected_option", "The selected option is invalid.")
	}

	hasVoted, err := s.voteRepo.HasVoted(ctx, poll.ID, input.Voter.UserID)
	if err != nil {
		return nil, err
	}
	if hasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	vote := &domain.Vote{
		ID:             uuid.New(),
		UserID:         input.Voter.UserID,
		PollID:         poll.ID,
		SelectedOption: input.SelectedOption,
		VotedAt:        now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// A concurrent vote can slip past HasVoted; SaveVote reports it as
	// ErrAlreadyVoted from the unique constraint.
	if err := s.voteRepo.SaveVote(ctx, vote); err != nil {
		return nil, err
	}

	return vote, nil
}
