package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/vncsmyrnk/polls/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/polls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
	"github.com/vncsmyrnk/polls/internal/core/services"
)

const (
	migrationsDir = "../../internal/adapters/repository/postgres/migrations"
	jwtSecret     = "test-secret"
)

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Polls       ports.PollService
	Votes       ports.VoteService
	Auth        *services.AuthService
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := repo.Open(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, repo.MigrateUp(ctx, db, migrationsDir))

	pollRepo := repo.NewPollRepository(db)
	voteRepo := repo.NewVoteRepository(db)
	userRepo := repo.NewUserRepository(db)

	pollSvc := services.NewPollService(pollRepo, time.Now)
	voteSvc := services.NewVoteService(pollRepo, voteRepo, time.Now)
	resultSvc := services.NewResultService(pollRepo, voteRepo)
	userSvc := services.NewUserService(userRepo)
	authSvc := services.NewAuthService(userRepo, repo.NewAuthRepository(db), jwtSecret, time.Hour)

	router := handler.NewHandler(handler.Handlers{
		Polls: handler.NewPollHandler(pollSvc, resultSvc),
		Votes: handler.NewVoteHandler(voteSvc),
		Admin: handler.NewAdminHandler(pollSvc),
		Users: handler.NewUserHandler(userSvc),
		Auth:  handler.NewAuthHandler(authSvc, "", false, http.SameSiteLaxMode),
	}, handler.Auth{Tokens: authSvc, Users: userSvc}, []string{"*"})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Polls:       pollSvc,
		Votes:       voteSvc,
		Auth:        authSvc,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// createUserAndToken registers a fresh user and returns its id and a bearer token.
func (app *TestApp) createUserAndToken(t *testing.T, admin bool) (uuid.UUID, string) {
	t.Helper()

	email := fmt.Sprintf("user-%s@example.com", uuid.NewString())
	token, user, err := app.Auth.IssueForEmail(context.Background(), email, "Test User", admin)
	require.NoError(t, err)
	return user.ID, token
}

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r response) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (app *TestApp) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Status: resp.StatusCode, Header: resp.Header, Body: raw}
}

type messageBody struct {
	Message string              `json:"message"`
	Poll    *domain.Poll        `json:"poll"`
	Errors  map[string][]string `json:"errors"`
}

func (app *TestApp) createPoll(t *testing.T, token string, payload map[string]any) domain.Poll {
	t.Helper()

	resp := app.do(t, http.MethodPost, "/api/polls", token, payload)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	var poll domain.Poll
	resp.decode(t, &poll)
	return poll
}
