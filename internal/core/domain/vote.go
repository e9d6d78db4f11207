package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	PollID         uuid.UUID `json:"poll_id"`
	SelectedOption string    `json:"selected_option"`
	VotedAt        time.Time `json:"voted_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
