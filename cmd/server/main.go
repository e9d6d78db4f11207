package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/polls/internal/adapters/handler/http"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/polls/internal/config"
	"github.com/vncsmyrnk/polls/internal/core/ports"
	"github.com/vncsmyrnk/polls/internal/core/services"
	"github.com/vncsmyrnk/polls/internal/logger"
)

type repositories struct {
	polls ports.PollRepository
	votes ports.VoteRepository
	users ports.UserRepository
	auth  ports.AuthRepository
	close func() error
}

func main() {
	config.LoadEnv()
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Configure(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("failed to open storage")
	}
	defer repos.close()

	pollService := services.NewPollService(repos.polls, time.Now)
	voteService := services.NewVoteService(repos.polls, repos.votes, time.Now)
	resultService := services.NewResultService(repos.polls, repos.votes)
	userService := services.NewUserService(repos.users)
	authService := services.NewAuthService(repos.users, repos.auth, cfg.JWTSecret, services.DefaultTokenTTL)

	handler := http.NewHandler(http.Handlers{
		Polls: http.NewPollHandler(pollService, resultService),
		Votes: http.NewVoteHandler(voteService),
		Admin: http.NewAdminHandler(pollService),
		Users: http.NewUserHandler(userService),
		Auth:  http.NewAuthHandler(authService, cfg.Cookie.Domain, cfg.Cookie.Secure, cfg.Cookie.SameSiteMode()),
	}, http.Auth{
		Tokens: authService,
		Users:  userService,
	}, cfg.AllowedOrigins)

	server := &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.Storage).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.Storage == config.StorageMemory {
		store := memory.NewStore()
		return repositories{
			polls: store,
			votes: store,
			users: store.Users(),
			auth:  store,
			close: func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DB.DSN())
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		polls: postgres.NewPollRepository(db),
		votes: postgres.NewVoteRepository(db),
		users: postgres.NewUserRepository(db),
		auth:  postgres.NewAuthRepository(db),
		close: db.Close,
	}, nil
}
