package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/polls/internal/config"
	"github.com/vncsmyrnk/polls/internal/core/services"
	"github.com/vncsmyrnk/polls/internal/logger"
)

// Mints an access token for a user, creating the user when needed. The token
// goes to stdout so it can be piped into an Authorization header.
func main() {
	config.LoadEnv()

	var db config.DBConfig
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	db.Bind(fs)
	email := fs.String("email", "", "User email (required)")
	name := fs.String("name", "", "Display name for a new user")
	admin := fs.Bool("admin", false, "Grant admin privileges")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	secret := fs.String("jwt-secret", os.Getenv("JWT_SECRET"), "HMAC secret (prefer env)")
	_ = fs.Parse(os.Args[1:])

	logger.Configure("info", "")

	if *email == "" || *secret == "" {
		log.Fatal().Msg("-email and JWT_SECRET are required")
	}
	if err := db.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := postgres.Open(ctx, db.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer conn.Close()

	auth := services.NewAuthService(postgres.NewUserRepository(conn), postgres.NewAuthRepository(conn), *secret, *ttl)
	token, user, err := auth.IssueForEmail(ctx, *email, *name, *admin)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Bool("admin", user.IsAdmin).
		Dur("ttl", *ttl).
		Msg("token issued")
	fmt.Println(token)
}
