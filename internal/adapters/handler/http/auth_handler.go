package http

import (
	"net/http"
	"time"

	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const (
	msgRegistered = "Registered successfully"
	msgLoggedIn   = "Logged in successfully"
	msgLoggedOut  = "Logged out successfully"
)

type AuthHandler struct {
	authService    ports.AuthService
	cookieDomain   string
	cookieSecure   bool
	cookieSameSite http.SameSite
}

func NewAuthHandler(authService ports.AuthService, cookieDomain string, cookieSecure bool, cookieSameSite http.SameSite) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		cookieDomain:   cookieDomain,
		cookieSecure:   cookieSecure,
		cookieSameSite: cookieSameSite,
	}
}

type sessionResponse struct {
	Message   string       `json:"message"`
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Register godoc
// @Summary      Creates an account and signs it in
// @Description  Sets the access_token cookie and returns the same token for bearer use
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      422
// @Router       /register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.RegisterInput{
		PasswordConfirmation: body.text("password_confirmation"),
		WrongType:            body.wrongTypes([]string{"name", "email", "password", "password_confirmation"}, nil),
	}
	if v := body.text("name"); v != nil {
		input.Name = *v
	}
	if v := body.text("email"); v != nil {
		input.Email = *v
	}
	if v := body.text("password"); v != nil {
		input.Password = *v
	}

	session, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusCreated, msgRegistered, session)
}

// Login godoc
// @Summary      Signs a user in with email and password
// @Description  Sets the access_token cookie and returns the same token for bearer use
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      401
// @Failure      422
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.LoginInput{
		WrongType: body.wrongTypes([]string{"email", "password"}, nil),
	}
	if v := body.text("email"); v != nil {
		input.Email = *v
	}
	if v := body.text("password"); v != nil {
		input.Password = *v
	}

	session, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusOK, msgLoggedIn, session)
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Revokes the token used for this request and clears the access_token cookie
// @Tags         auth
// @Produce      json
// @Success      200
// @Failure      401
// @Router       /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), AccessTokenFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}

	h.expireCookie(w)
	writeMessage(w, r, http.StatusOK, msgLoggedOut)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, message string, session *domain.Session) {
	h.setAccessTokenCookie(w, session)
	writeJSON(w, r, status, sessionResponse{
		Message:   message,
		User:      session.User,
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, session *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.cookieDomain,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: h.cookieSameSite,
	})
}

func (h *AuthHandler) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: h.cookieSameSite,
	})
}
