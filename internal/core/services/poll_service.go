package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const (
	msgOptionsMin     = "The options field must have at least 2 items."
	msgOptionsMissing = "The options field is required."
	msgOptionsArray   = "The options field must be an array."
	msgClosesAtDate   = "The closes at field must be a valid date."
	msgClosesAtFuture = "The closes at field must be a date after now."
	msgClosesAtNeeded = "The closes at field is required."
)

type pollService struct {
	repo ports.PollRepository
	now  ports.Clock
}

func NewPollService(repo ports.PollRepository, clock ports.Clock) ports.PollService {
	if clock == nil {
		clock = time.Now
	}
	return &pollService{
		repo: repo,
		now:  clock,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	verr := domain.NewValidationError()
	wrong := typeErrors(verr, input.WrongType)

	if !wrong["question"] {
		if msg, ok := domain.ValidQuestion(input.Question); !ok {
			verr.Add("question", msg)
		}
	}

	options := domain.CleanOptions(input.Options)
	switch {
	case wrong["options"]:
	case input.Options == nil:
		verr.Add("options", msgOptionsMissing)
	case len(options) < 2:
		verr.Add("options", msgOptionsMin)
	}

	var closesAt *time.Time
	if input.ClosesAt != nil && !wrong["closes_at"] {
		t, err := parseTimestamp(*input.ClosesAt)
		if err != nil {
			verr.Add("closes_at", msgClosesAtDate)
		} else {
			closesAt = &t
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	poll := &domain.Poll{
		ID:          uuid.New(),
		Question:    input.Question,
		Description: input.Description,
		Options:     options,
		ClosesAt:    closesAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	return s.find(ctx, id, domain.OnlyActive)
}

func (s *pollService) ListPolls(ctx context.Context) ([]*domain.Poll, error) {
	return s.repo.List(ctx, domain.OnlyActive)
}

func (s *pollService) ListTrashed(ctx context.Context) ([]*domain.Poll, error) {
	return s.repo.List(ctx, domain.OnlyTrashed)
}

func (s *pollService) Update(ctx context.Context, id string, input ports.UpdatePollInput) (*domain.Poll, error) {
	poll, err := s.find(ctx, id, domain.OnlyActive)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return poll, nil
	}

	verr := domain.NewValidationError()
	wrong := typeErrors(verr, input.WrongType)
	next := *poll

	if input.Question.Set && !wrong["question"] {
		question := ""
		if input.Question.Value != nil {
			question = *input.Question.Value
		}
		if msg, ok := domain.ValidQuestion(question); !ok {
			verr.Add("question", msg)
		} else {
			next.Question = question
		}
	}

	if input.Description.Set && !wrong["description"] {
		next.Description = input.Description.Value
	}

	if input.Options.Set && !wrong["options"] {
		if input.Options.Value == nil {
			verr.Add("options", msgOptionsMissing)
		} else {
			options := domain.CleanOptions(*input.Options.Value)
			if len(options) < 2 {
				verr.Add("options", msgOptionsMin)
			} else {
				next.Options = options
			}
		}
	}

	if input.ClosesAt.Set && !wrong["closes_at"] {
		if input.ClosesAt.Value == nil {
			next.ClosesAt = nil
		} else if t, err := parseTimestamp(*input.ClosesAt.Value); err != nil {
			verr.Add("closes_at", msgClosesAtDate)
		} else {
			next.ClosesAt = &t
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	return s.save(ctx, &next)
}

func (s *pollService) Close(ctx context.Context, id string) (*domain.Poll, error) {
	poll, err := s.find(ctx, id, domain.OnlyActive)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	poll.ClosesAt = &now
	return s.save(ctx, poll)
}

func (s *pollService) Extend(ctx context.Context, id string, input ports.ExtendPollInput) (*domain.Poll, error) {
	poll, err := s.find(ctx, id, domain.OnlyActive)
	if err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	if typeErrors(verr, input.WrongType)["closes_at"] {
		return nil, verr
	}
	if input.ClosesAt == nil {
		return nil, domain.FieldError(nil, "closes_at", msgClosesAtNeeded)
	}
	t, err := parseTimestamp(*input.ClosesAt)
	if err != nil {
		return nil, domain.FieldError(nil, "closes_at", msgClosesAtDate)
	}
	if !t.After(s.now()) {
		return nil, domain.FieldError(nil, "closes_at", msgClosesAtFuture)
	}

	poll.ClosesAt = &t
	return s.save(ctx, poll)
}

func (s *pollService) Open(ctx context.Context, id string) (*domain.Poll, error) {
	poll, err := s.find(ctx, id, domain.OnlyActive)
	if err != nil {
		return nil, err
	}

	poll.ClosesAt = nil
	return s.save(ctx, poll)
}

func (s *pollService) SoftDelete(ctx context.Context, id string) error {
	poll, err := s.find(ctx, id, domain.OnlyActive)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	poll.DeletedAt = &now
	_, err = s.save(ctx, poll)
	return err
}

func (s *pollService) Restore(ctx context.Context, id string) (*domain.Poll, error) {
	poll, err := s.find(ctx, id, domain.AnyState)
	if err != nil {
		return nil, err
	}
	if poll.State() != domain.PollTrashed {
		return nil, domain.ErrPollNotDeleted
	}

	poll.DeletedAt = nil
	return s.save(ctx, poll)
}

func (s *pollService) ForceDelete(ctx context.Context, id string) error {
	poll, err := s.find(ctx, id, domain.AnyState)
	if err != nil {
		return err
	}
	return s.repo.ForceDelete(ctx, poll.ID)
}

func (s *pollService) find(ctx context.Context, id string, visibility domain.Visibility) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrPollNotFound
	}
	return s.repo.GetByID(ctx, pollID, visibility)
}

func (s *pollService) save(ctx context.Context, poll *domain.Poll) (*domain.Poll, error) {
	poll.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

// typeErrors adds a message for every field sent with the wrong JSON type
// and returns the set of fields it flagged.
func typeErrors(verr *domain.ValidationError, fields []string) map[string]bool {
	flagged := make(map[string]bool, len(fields))
	for _, field := range fields {
		flagged[field] = true
		switch field {
		case "options":
			verr.Add(field, msgOptionsArray)
		case "closes_at":
			verr.Add(field, msgClosesAtDate)
		default:
			verr.Add(field, "The "+strings.ReplaceAll(field, "_", " ")+" field must be a string.")
		}
	}
	return flagged
}
