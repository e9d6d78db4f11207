package http

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

const (
	msgUnauthenticated = "Unauthenticated."
	msgUnauthorized    = "Unauthorized"
	msgAdminRequired   = "Unauthorized. Admin access required."
	msgNotFound        = "Poll not found"
	msgInvalidData     = "The given data was invalid."
	msgInvalidOption   = "Invalid option"
	msgPollClosed      = "Poll is closed"
	msgAlreadyVoted    = "You already voted in this poll"
	msgNotDeleted      = "Poll is not deleted"
	msgServerError     = "Server Error"
	msgBadCredentials  = "Invalid credentials"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string       `json:"message"`
	Poll    *domain.Poll `json:"poll,omitempty"`
	Vote    *domain.Vote `json:"vote,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Message: message})
}

// writeError maps core errors to status codes. Anything unrecognised is
// logged with its stack and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		message := msgInvalidData
		if errors.Is(err, domain.ErrInvalidOption) {
			message = msgInvalidOption
		}
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Message: message, Errors: verr.Fields})
		return
	}

	switch {
	case errors.Is(err, errMalformedBody):
		writeMessage(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPollNotFound):
		writeMessage(w, r, http.StatusNotFound, msgNotFound)
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		// A caller whose account vanished mid-request is no longer authenticated.
		writeMessage(w, r, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, r, http.StatusUnauthorized, msgBadCredentials)
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, r, http.StatusForbidden, msgAdminRequired)
	case errors.Is(err, domain.ErrPollClosed):
		writeMessage(w, r, http.StatusUnprocessableEntity, msgPollClosed)
	case errors.Is(err, domain.ErrAlreadyVoted):
		writeMessage(w, r, http.StatusUnprocessableEntity, msgAlreadyVoted)
	case errors.Is(err, domain.ErrPollNotDeleted):
		writeMessage(w, r, http.StatusBadRequest, msgNotDeleted)
	default:
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unhandled error")
		writeMessage(w, r, http.StatusInternalServerError, msgServerError)
	}
}
