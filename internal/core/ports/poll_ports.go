package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	Update(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID, visibility domain.Visibility) (*domain.Poll, error)
	// List returns active polls newest first, or trashed polls most recently
	// deleted first.
	List(ctx context.Context, visibility domain.Visibility) ([]*domain.Poll, error)
	// ForceDelete removes the poll and every vote cast on it.
	ForceDelete(ctx context.Context, id uuid.UUID) error
}

type CreatePollInput struct {
	Question    string
	Description *string
	Options     []*string
	ClosesAt    *string
	// WrongType names fields the caller sent with a JSON type other than
	// the expected string or array.
	WrongType []string
}

// UpdatePollInput carries only the fields the caller supplied.
type UpdatePollInput struct {
	Question    Patch[string]
	Description Patch[string]
	Options     Patch[[]*string]
	ClosesAt    Patch[string]
	WrongType   []string
}

// Empty reports whether the caller supplied no field at all.
func (in UpdatePollInput) Empty() bool {
	return !in.Question.Set && !in.Description.Set && !in.Options.Set && !in.ClosesAt.Set && len(in.WrongType) == 0
}

type ExtendPollInput struct {
	ClosesAt  *string
	WrongType []string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context) ([]*domain.Poll, error)
	Update(ctx context.Context, id string, input UpdatePollInput) (*domain.Poll, error)
	Close(ctx context.Context, id string) (*domain.Poll, error)
	Extend(ctx context.Context, id string, input ExtendPollInput) (*domain.Poll, error)
	Open(ctx context.Context, id string) (*domain.Poll, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*domain.Poll, error)
	ForceDelete(ctx context.Context, id string) error
	ListTrashed(ctx context.Context) ([]*domain.Poll, error)
}

// Clock is swapped out in tests to pin "now".
type Clock func() time.Time
