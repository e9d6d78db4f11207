package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type Handlers struct {
	Polls *PollHandler
	Votes *VoteHandler
	Admin *AdminHandler
	Users *UserHandler
	Auth  *AuthHandler
}

type Auth struct {
	Tokens ports.TokenService
	Users  ports.UserService
}

func NewHandler(h Handlers, auth Auth, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(auth.Tokens, auth.Users))

		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.With(RequireUser).Post("/logout", h.Auth.Logout)

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Polls.ListPolls)
			r.Get("/{id}", h.Polls.GetPoll)
			r.Get("/{id}/results", h.Polls.Results)
			r.With(RequireUser).Post("/", h.Polls.CreatePoll)
			// Authorization is left to the vote service so a missing poll
			// is reported before a missing login.
			r.Post("/{id}/vote", h.Votes.VoteOnPoll)
		})

		r.With(RequireUser).Get("/me", h.Users.GetMe)

		r.Route("/admin/polls", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/trashed", h.Admin.ListTrashed)
			r.Put("/{id}", h.Admin.UpdatePoll)
			r.Delete("/{id}", h.Admin.DeletePoll)
			r.Post("/{id}/close", h.Admin.ClosePoll)
			r.Post("/{id}/extend", h.Admin.ExtendPoll)
			r.Post("/{id}/open", h.Admin.OpenPoll)
			r.Post("/{id}/restore", h.Admin.RestorePoll)
			r.Delete("/{id}/force", h.Admin.ForceDeletePoll)
		})
	})

	return r
}
