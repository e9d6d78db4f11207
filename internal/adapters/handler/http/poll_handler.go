package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
	results ports.ResultService
}

func NewPollHandler(service ports.PollService, results ports.ResultService) *PollHandler {
	return &PollHandler{
		service: service,
		results: results,
	}
}

// ListPolls godoc
// @Summary      Lists active polls
// @Description  Returns every poll that is not in the trash, newest first
// @Tags         polls
// @Produce      json
// @Success      200
// @Router       /polls [get]
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListPolls(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}
	writeJSON(w, r, http.StatusOK, polls)
}

// GetPoll godoc
// @Summary      Gets a poll
// @Tags         polls
// @Produce      json
// @Param        id   path      string  true  "Poll ID"
// @Success      200
// @Failure      404
// @Router       /polls/{id} [get]
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, poll)
}

// CreatePoll godoc
// @Summary      Creates a poll
// @Description  Blank options are dropped before the two option minimum is checked
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      401
// @Failure      422
// @Router       /polls [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.CreatePollInput{
		Description: body.text("description"),
		ClosesAt:    body.text("closes_at"),
		WrongType:   body.wrongTypes([]string{"question", "description", "closes_at"}, []string{"options"}),
	}
	if q := body.text("question"); q != nil {
		input.Question = *q
	}
	if options := body.list("options"); options != nil {
		input.Options = *options
	}

	poll, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, poll)
}

// Results godoc
// @Summary      Tallies a poll
// @Description  Counts follow the poll's option order and include options without votes
// @Tags         polls
// @Produce      json
// @Param        id   path      string  true  "Poll ID"
// @Success      200
// @Failure      404
// @Router       /polls/{id}/results [get]
func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	tally, err := h.results.Tally(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tally)
}
