package postgres

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping postgres")
	}
	return db, nil
}

// UpMigrations lists the *.up.sql files of dir in file name order.
func UpMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations directory")
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func ApplyMigration(ctx context.Context, db *sql.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read migration file %s", filepath.Base(path))
	}
	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return errors.Wrapf(err, "failed to execute migration %s", filepath.Base(path))
	}
	return nil
}

// MigrateUp applies every up migration in dir. The statements are idempotent.
func MigrateUp(ctx context.Context, db *sql.DB, dir string) error {
	files, err := UpMigrations(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := ApplyMigration(ctx, db, f); err != nil {
			return err
		}
	}
	return nil
}
