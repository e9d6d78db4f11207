package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type resultService struct {
	pollRepo ports.PollRepository
	voteRepo ports.VoteRepository
}

func NewResultService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository) ports.ResultService {
	return &resultService{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
	}
}

func (s *resultService) Tally(ctx context.Context, id string) (domain.Tally, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return domain.Tally{}, domain.ErrPollNotFound
	}

	poll, err := s.pollRepo.GetByID(ctx, pollID, domain.OnlyActive)
	if err != nil {
		return domain.Tally{}, err
	}

	counts, err := s.voteRepo.CountByOption(ctx, poll.ID)
	if err != nil {
		return domain.Tally{}, err
	}

	return domain.TallyVotes(poll, counts), nil
}
