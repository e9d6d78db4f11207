package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/polls/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/services"
)

type testApp struct {
	handler http.Handler
	store   *memory.Store
	auth    *services.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := memory.NewStore()
	users := store.Users()
	pollSvc := services.NewPollService(store, time.Now)
	userSvc := services.NewUserService(users)
	auth := services.NewAuthService(users, store, "test-secret", time.Hour)

	h := NewHandler(Handlers{
		Polls: NewPollHandler(pollSvc, services.NewResultService(store, store)),
		Votes: NewVoteHandler(services.NewVoteService(store, store, time.Now)),
		Admin: NewAdminHandler(pollSvc),
		Users: NewUserHandler(userSvc),
		Auth:  NewAuthHandler(auth, "", true, http.SameSiteLaxMode),
	}, Auth{Tokens: auth, Users: userSvc}, []string{"*"})

	return &testApp{handler: h, store: store, auth: auth}
}

func (a *testApp) token(t *testing.T, admin bool) string {
	t.Helper()
	token, _, err := a.auth.IssueForEmail(context.Background(), uuid.NewString()+"@example.com", "Tester", admin)
	require.NoError(t, err)
	return token
}

func (a *testApp) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type envelope struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Poll    *domain.Poll        `json:"poll"`
}

func (a *testApp) createPoll(t *testing.T, token, body string) domain.Poll {
	t.Helper()
	rec := a.request(t, http.MethodPost, "/api/polls", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var poll domain.Poll
	decode(t, rec, &poll)
	return poll
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.request(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAndReadPoll(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, false)

	poll := app.createPoll(t, token, `{"question":"Lunch?","options":["Pizza","",null,"  ","Sushi"],"closes_at":null}`)
	assert.Equal(t, []string{"Pizza", "Sushi"}, poll.Options)
	assert.Nil(t, poll.ClosesAt)
	assert.Nil(t, poll.Description)

	rec := app.request(t, http.MethodGet, "/api/polls/"+poll.ID.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = app.request(t, http.MethodGet, "/api/polls", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Poll
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, poll.ID, list[0].ID)
}

func TestListPollsEmptyIsArray(t *testing.T) {
	app := newTestApp(t)
	rec := app.request(t, http.MethodGet, "/api/polls", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreatePollErrors(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, false)

	rec := app.request(t, http.MethodPost, "/api/polls", "", `{"question":"Q","options":["A","B"]}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var unauth envelope
	decode(t, rec, &unauth)
	assert.Equal(t, "Unauthenticated.", unauth.Message)

	rec = app.request(t, http.MethodPost, "/api/polls", "forged.token.value", `{"question":"Q","options":["A","B"]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/polls", token, `{"question":"","options":["A"],"closes_at":"soon"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var invalid envelope
	decode(t, rec, &invalid)
	assert.Equal(t, "The given data was invalid.", invalid.Message)
	assert.Contains(t, invalid.Errors, "question")
	assert.Contains(t, invalid.Errors, "options")
	assert.Contains(t, invalid.Errors, "closes_at")

	rec = app.request(t, http.MethodPost, "/api/polls", token, `{"question":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePollRejectsNonStrings(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, false)

	rec := app.request(t, http.MethodPost, "/api/polls", token, `{"question":"Q?","options":[{"x":1},[1,2],true]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var filtered envelope
	decode(t, rec, &filtered)
	assert.Equal(t, []string{"The options field must have at least 2 items."}, filtered.Errors["options"])

	poll := app.createPoll(t, token, `{"question":"Mixed?","options":["A",7,"B",false]}`)
	assert.Equal(t, []string{"A", "B"}, poll.Options)

	rec = app.request(t, http.MethodPost, "/api/polls", token, `{"question":12345,"description":{"a":1},"options":["A","B"],"closes_at":20300101}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var typed envelope
	decode(t, rec, &typed)
	assert.Equal(t, []string{"The question field must be a string."}, typed.Errors["question"])
	assert.Equal(t, []string{"The description field must be a string."}, typed.Errors["description"])
	assert.Equal(t, []string{"The closes at field must be a valid date."}, typed.Errors["closes_at"])

	rec = app.request(t, http.MethodPost, "/api/polls", token, `{"question":"Q?","options":"A,B"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var notArray envelope
	decode(t, rec, &notArray)
	assert.Equal(t, []string{"The options field must be an array."}, notArray.Errors["options"])

	rec = app.request(t, http.MethodGet, "/api/polls", "", "")
	var list []domain.Poll
	decode(t, rec, &list)
	assert.Len(t, list, 1)
}

func TestGetPollNotFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/api/polls/" + uuid.NewString(),
		"/api/polls/not-a-uuid",
		"/api/polls/" + uuid.NewString() + "/results",
	} {
		rec := app.request(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		var body envelope
		decode(t, rec, &body)
		assert.NotEmpty(t, body.Message)
	}
}

func TestVoteEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, false)
	poll := app.createPoll(t, token, `{"question":"Colour?","options":["Red","Blue"]}`)
	path := "/api/polls/" + poll.ID.String() + "/vote"

	rec := app.request(t, http.MethodPost, "/api/polls/"+uuid.NewString()+"/vote", "", `{"selected_option":"Red"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "missing poll is reported before missing login")

	rec = app.request(t, http.MethodPost, path, "", `{"selected_option":"Red"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var unauth envelope
	decode(t, rec, &unauth)
	assert.Equal(t, "Unauthorized", unauth.Message)

	rec = app.request(t, http.MethodPost, path, token, `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var required envelope
	decode(t, rec, &required)
	assert.Contains(t, required.Errors, "selected_option")

	rec = app.request(t, http.MethodPost, path, token, `{"selected_option":"Green"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var invalid envelope
	decode(t, rec, &invalid)
	assert.Equal(t, "Invalid option", invalid.Message)
	assert.Contains(t, invalid.Errors, "selected_option")

	rec = app.request(t, http.MethodPost, path, token, `{"selected_option":"Red"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var voted struct {
		Message string      `json:"message"`
		Vote    domain.Vote `json:"vote"`
	}
	decode(t, rec, &voted)
	assert.Equal(t, "Vote recorded successfully", voted.Message)
	assert.Equal(t, "Red", voted.Vote.SelectedOption)

	rec = app.request(t, http.MethodPost, path, token, `{"selected_option":"Blue"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var dup envelope
	decode(t, rec, &dup)
	assert.Equal(t, "You already voted in this poll", dup.Message)
}

func TestVoteRejectsNonStringOption(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, false)
	poll := app.createPoll(t, token, `{"question":"Number?","options":["A","5"]}`)
	path := "/api/polls/" + poll.ID.String() + "/vote"

	rec := app.request(t, http.MethodPost, path, "", `{"selected_option":5}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(t, http.MethodPost, path, token, `{"selected_option":5}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body envelope
	decode(t, rec, &body)
	assert.Equal(t, "The given data was invalid.", body.Message)
	assert.Equal(t, []string{"The selected option field must be a string."}, body.Errors["selected_option"])
	assert.Zero(t, app.store.VoteCount(poll.ID))

	rec = app.request(t, http.MethodPost, path, token, `{"selected_option":"5"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestVoteAcceptsCookieToken(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, false)
	poll := app.createPoll(t, token, `{"question":"Cookie?","options":["Yes","No"]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/polls/"+poll.ID.String()+"/vote", bytes.NewBufferString(`{"selected_option":"Yes"}`))
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestVoteOnClosedPoll(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, false)
	poll := app.createPoll(t, token, `{"question":"Late?","options":["A","B"],"closes_at":"2000-01-01 00:00:00"}`)

	rec := app.request(t, http.MethodPost, "/api/polls/"+poll.ID.String()+"/vote", token, `{"selected_option":"A"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body envelope
	decode(t, rec, &body)
	assert.Equal(t, "Poll is closed", body.Message)
}

func TestResultsEndpoint(t *testing.T) {
	app := newTestApp(t)
	poll := app.createPoll(t, app.token(t, false), `{"question":"Tally?","options":["Zed","Alpha","Zed"]}`)

	rec := app.request(t, http.MethodPost, "/api/polls/"+poll.ID.String()+"/vote", app.token(t, false), `{"selected_option":"Zed"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/polls/"+poll.ID.String()+"/results", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"counts":{"Zed":1,"Alpha":0}`)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestMe(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/me", app.token(t, true), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var user domain.User
	decode(t, rec, &user)
	assert.Equal(t, "Tester", user.Name)
	assert.True(t, user.IsAdmin)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/polls", nil)
	req.Header.Set("Origin", "https://polls.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
