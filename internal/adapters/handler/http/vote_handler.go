package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const msgVoteRecorded = "Vote recorded successfully"

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

// VoteOnPoll godoc
// @Summary      Casts the caller's vote
// @Description  A missing poll is reported before a missing login
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Poll ID"
// @Success      201
// @Failure      401
// @Failure      404
// @Failure      422
// @Router       /polls/{id}/vote [post]
func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.VoteInput{
		PollID:    chi.URLParam(r, "id"),
		Voter:     IdentityFrom(r.Context()),
		WrongType: body.wrongTypes([]string{"selected_option"}, nil),
	}
	if option := body.text("selected_option"); option != nil {
		input.SelectedOption = *option
	}

	vote, err := h.service.Vote(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, messageResponse{Message: msgVoteRecorded, Vote: vote})
}
