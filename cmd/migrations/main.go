package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/polls/internal/config"
	"github.com/vncsmyrnk/polls/internal/logger"
)

// Usage: migrations [flags] <name|all>
// A name matches the end of a migration file name, e.g. "create_polls.up".
func main() {
	config.LoadEnv()

	var db config.DBConfig
	fs := flag.NewFlagSet("migrations", flag.ExitOnError)
	db.Bind(fs)
	dir := fs.String("dir", filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations"), "Migrations directory")
	level := fs.String("log-level", "info", "Log level")
	_ = fs.Parse(os.Args[1:])

	logger.Configure(*level, "")

	if fs.NArg() < 1 {
		log.Fatal().Msg("a migration name (or \"all\") is required")
	}
	if err := db.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	conn, err := postgres.Open(ctx, db.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer conn.Close()

	files, err := migrationFiles(*dir, fs.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve migrations")
	}

	for _, f := range files {
		if err := postgres.ApplyMigration(ctx, conn, f); err != nil {
			log.Fatal().Stack().Err(err).Msg("migration failed")
		}
		log.Info().Str("file", filepath.Base(f)).Msg("migration file executed")
	}
}

func migrationFiles(dir, name string) ([]string, error) {
	if name == "all" {
		return postgres.UpMigrations(dir)
	}

	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(name)))
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && regex.MatchString(entry.Name()) {
			return []string{filepath.Join(dir, entry.Name())}, nil
		}
	}
	return nil, fmt.Errorf("migration file %q not found", name)
}
