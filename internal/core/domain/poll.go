package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxQuestionLength = 255

type PollState int

const (
	PollActive PollState = iota
	PollTrashed
)

func (s PollState) String() string {
	switch s {
	case PollActive:
		return "active"
	case PollTrashed:
		return "trashed"
	default:
		return "unknown"
	}
}

// Visibility selects which poll states a read path may return.
type Visibility int

const (
	OnlyActive Visibility = iota
	OnlyTrashed
	AnyState
)

func (v Visibility) Allows(s PollState) bool {
	switch v {
	case OnlyActive:
		return s == PollActive
	case OnlyTrashed:
		return s == PollTrashed
	default:
		return true
	}
}

type Poll struct {
	ID          uuid.UUID  `json:"id"`
	Question    string     `json:"question"`
	Description *string    `json:"description"`
	Options     []string   `json:"options"`
	ClosesAt    *time.Time `json:"closes_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *Poll) State() PollState {
	if p.DeletedAt != nil {
		return PollTrashed
	}
	return PollActive
}

// IsClosed reports whether voting has ended at now. A poll closes strictly
// after its deadline, never at it.
func (p *Poll) IsClosed(now time.Time) bool {
	return p.ClosesAt != nil && now.After(*p.ClosesAt)
}

// HasOption matches label exactly, without case folding or trimming.
func (p *Poll) HasOption(label string) bool {
	for _, opt := range p.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// CleanOptions drops absent, empty and whitespace-only entries and keeps the
// remaining ones untouched and in order.
func CleanOptions(raw []*string) []string {
	options := make([]string, 0, len(raw))
	for _, opt := range raw {
		if opt == nil || strings.TrimSpace(*opt) == "" {
			continue
		}
		options = append(options, *opt)
	}
	return options
}

func ValidQuestion(question string) (string, bool) {
	if strings.TrimSpace(question) == "" {
		return "The question field is required.", false
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return "The question field must not be greater than 255 characters.", false
	}
	return "", true
}
