package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const (
	msgUpdated      = "Poll updated successfully"
	msgSoftDeleted  = "Poll soft deleted successfully"
	msgClosed       = "Poll closed successfully"
	msgExtended     = "Poll deadline extended successfully"
	msgOpened       = "Poll opened (no closing date)"
	msgRestored     = "Poll restored successfully"
	msgForceDeleted = "Poll permanently deleted"
)

// AdminHandler serves the poll moderation routes. Callers are expected to
// have passed RequireAdmin.
type AdminHandler struct {
	service ports.PollService
}

func NewAdminHandler(service ports.PollService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

type trashedResponse struct {
	DeletedPolls []*domain.Poll `json:"deleted_polls"`
}

// UpdatePoll godoc
// @Summary      Edits a poll
// @Description  Only the supplied fields change; description and closes_at accept null
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Poll ID"
// @Success      200
// @Failure      403
// @Failure      404
// @Failure      422
// @Router       /admin/polls/{id} [put]
func (h *AdminHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.UpdatePollInput{
		Question:    body.patch("question"),
		Description: body.patch("description"),
		Options:     body.listPatch("options"),
		ClosesAt:    body.patch("closes_at"),
		WrongType:   body.wrongTypes([]string{"question", "description", "closes_at"}, []string{"options"}),
	}

	poll, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	h.respond(w, r, poll, err, msgUpdated)
}

func (h *AdminHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	err := h.service.SoftDelete(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, nil, err, msgSoftDeleted)
}

func (h *AdminHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.Close(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, poll, err, msgClosed)
}

// ExtendPoll godoc
// @Summary      Moves a poll's deadline
// @Description  closes_at is required and must be after now
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Poll ID"
// @Success      200
// @Failure      404
// @Failure      422
// @Router       /admin/polls/{id}/extend [post]
func (h *AdminHandler) ExtendPoll(w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	poll, err := h.service.Extend(r.Context(), chi.URLParam(r, "id"), ports.ExtendPollInput{
		ClosesAt:  body.text("closes_at"),
		WrongType: body.wrongTypes([]string{"closes_at"}, nil),
	})
	h.respond(w, r, poll, err, msgExtended)
}

func (h *AdminHandler) OpenPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.Open(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, poll, err, msgOpened)
}

// ListTrashed godoc
// @Summary      Lists soft deleted polls
// @Tags         admin
// @Produce      json
// @Success      200
// @Failure      403
// @Router       /admin/polls/trashed [get]
func (h *AdminHandler) ListTrashed(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListTrashed(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}
	writeJSON(w, r, http.StatusOK, trashedResponse{DeletedPolls: polls})
}

func (h *AdminHandler) RestorePoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.Restore(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, poll, err, msgRestored)
}

// ForceDeletePoll godoc
// @Summary      Permanently deletes a poll
// @Description  Removes the poll in any state together with all of its votes
// @Tags         admin
// @Param        id   path      string  true  "Poll ID"
// @Success      200
// @Failure      404
// @Router       /admin/polls/{id}/force [delete]
func (h *AdminHandler) ForceDeletePoll(w http.ResponseWriter, r *http.Request) {
	err := h.service.ForceDelete(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, nil, err, msgForceDeleted)
}

func (h *AdminHandler) respond(w http.ResponseWriter, r *http.Request, poll *domain.Poll, err error, message string) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: message, Poll: poll})
}
