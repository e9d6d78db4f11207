package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/polls/internal/core/domain"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := setupTestApp(t)
	defer app.Teardown(t)

	_, token := app.createUserAndToken(t, false)
	poll := app.createPoll(t, token, map[string]any{"question": "Q", "options": []string{"A", "B"}})

	routes := []struct{ method, path string }{
		{http.MethodPut, "/api/admin/polls/" + poll.ID.String()},
		{http.MethodDelete, "/api/admin/polls/" + poll.ID.String()},
		{http.MethodPost, fmt.Sprintf("/api/admin/polls/%s/close", poll.ID)},
		{http.MethodPost, fmt.Sprintf("/api/admin/polls/%s/extend", poll.ID)},
		{http.MethodPost, fmt.Sprintf("/api/admin/polls/%s/open", poll.ID)},
		{http.MethodGet, "/api/admin/polls/trashed"},
		{http.MethodPost, fmt.Sprintf("/api/admin/polls/%s/restore", poll.ID)},
		{http.MethodDelete, fmt.Sprintf("/api/admin/polls/%s/force", poll.ID)},
	}

	for _, route := range routes {
		resp := app.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Status, route.path)

		resp = app.do(t, route.method, route.path, token, nil)
		require.Equal(t, http.StatusForbidden, resp.Status, route.path)
		var body messageBody
		resp.decode(t, &body)
		assert.Equal(t, "Unauthorized. Admin access required.", body.Message)
	}
}

func TestAdminUpdateAndDeadlines(t *testing.T) {
	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminToken := app.createUserAndToken(t, true)
	poll := app.createPoll(t, adminToken, map[string]any{
		"question":    "Original?",
		"description": "Keep me",
		"options":     []string{"A", "B"},
		"closes_at":   time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	})
	base := "/api/admin/polls/" + poll.ID.String()

	// Only supplied fields change; null clears closes_at
	resp := app.do(t, http.MethodPut, base, adminToken, map[string]any{
		"question":  "Renamed?",
		"closes_at": nil,
	})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var updated messageBody
	resp.decode(t, &updated)
	assert.Equal(t, "Poll updated successfully", updated.Message)
	require.NotNil(t, updated.Poll)
	assert.Equal(t, "Renamed?", updated.Poll.Question)
	require.NotNil(t, updated.Poll.Description)
	assert.Equal(t, "Keep me", *updated.Poll.Description)
	assert.Equal(t, []string{"A", "B"}, updated.Poll.Options)
	assert.Nil(t, updated.Poll.ClosesAt)

	resp = app.do(t, http.MethodPut, base, adminToken, map[string]any{"options": []string{"Only one", " "}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	resp = app.do(t, http.MethodPost, base+"/close", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var closed messageBody
	resp.decode(t, &closed)
	assert.Equal(t, "Poll closed successfully", closed.Message)
	require.NotNil(t, closed.Poll.ClosesAt)

	resp = app.do(t, http.MethodPost, base+"/extend", adminToken, map[string]any{
		"closes_at": time.Now().Add(-time.Minute).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	var rejected messageBody
	resp.decode(t, &rejected)
	assert.Contains(t, rejected.Errors, "closes_at")

	future := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	resp = app.do(t, http.MethodPost, base+"/extend", adminToken, map[string]any{"closes_at": future.Format(time.RFC3339)})
	require.Equal(t, http.StatusOK, resp.Status)
	var extended messageBody
	resp.decode(t, &extended)
	assert.Equal(t, "Poll deadline extended successfully", extended.Message)
	require.NotNil(t, extended.Poll.ClosesAt)
	assert.True(t, future.Equal(*extended.Poll.ClosesAt))

	resp = app.do(t, http.MethodPost, base+"/open", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var opened messageBody
	resp.decode(t, &opened)
	assert.Equal(t, "Poll opened (no closing date)", opened.Message)
	assert.Nil(t, opened.Poll.ClosesAt)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	app := setupTestApp(t)
	defer app.Teardown(t)

	voterID, voterToken := app.createUserAndToken(t, false)
	_, adminToken := app.createUserAndToken(t, true)
	poll := app.createPoll(t, adminToken, map[string]any{"question": "Trash me?", "options": []string{"A", "B"}})
	base := "/api/admin/polls/" + poll.ID.String()

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/polls/%s/vote", poll.ID), voterToken, map[string]any{"selected_option": "A"})
	require.Equal(t, http.StatusCreated, resp.Status)

	resp = app.do(t, http.MethodPost, base+"/restore", adminToken, nil)
	require.Equal(t, http.StatusBadRequest, resp.Status)
	var notDeleted messageBody
	resp.decode(t, &notDeleted)
	assert.Equal(t, "Poll is not deleted", notDeleted.Message)

	resp = app.do(t, http.MethodDelete, base, adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	// Trashed polls cannot be edited, voted on or deleted again
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodPost, base+"/close", adminToken, nil).Status)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, base, adminToken, nil).Status)

	resp = app.do(t, http.MethodGet, "/api/admin/polls/trashed", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var trashed struct {
		DeletedPolls []domain.Poll `json:"deleted_polls"`
	}
	resp.decode(t, &trashed)
	require.Len(t, trashed.DeletedPolls, 1)
	assert.Equal(t, poll.ID, trashed.DeletedPolls[0].ID)
	assert.NotNil(t, trashed.DeletedPolls[0].DeletedAt)

	// The vote survives the soft delete
	var votes int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE poll_id = $1 AND user_id = $2", poll.ID, voterID).Scan(&votes))
	assert.Equal(t, 1, votes)

	resp = app.do(t, http.MethodPost, base+"/restore", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var restored messageBody
	resp.decode(t, &restored)
	assert.Equal(t, "Poll restored successfully", restored.Message)
	assert.Nil(t, restored.Poll.DeletedAt)

	resp = app.do(t, http.MethodGet, "/api/polls/"+poll.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestForceDeleteCascades(t *testing.T) {
	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminToken := app.createUserAndToken(t, true)
	doomed := app.createPoll(t, adminToken, map[string]any{"question": "Doomed?", "options": []string{"A", "B"}})
	kept := app.createPoll(t, adminToken, map[string]any{"question": "Kept?", "options": []string{"A", "B"}})

	for i := 0; i < 3; i++ {
		_, token := app.createUserAndToken(t, false)
		for _, p := range []domain.Poll{doomed, kept} {
			resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/polls/%s/vote", p.ID), token, map[string]any{"selected_option": "B"})
			require.Equal(t, http.StatusCreated, resp.Status)
		}
	}

	// Force delete works on trashed polls too
	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/admin/polls/"+doomed.ID.String(), adminToken, nil).Status)

	resp := app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/polls/%s/force", doomed.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var body messageBody
	resp.decode(t, &body)
	assert.Equal(t, "Poll permanently deleted", body.Message)

	var polls, doomedVotes, keptVotes int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM polls WHERE id = $1", doomed.ID).Scan(&polls))
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE poll_id = $1", doomed.ID).Scan(&doomedVotes))
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE poll_id = $1", kept.ID).Scan(&keptVotes))
	assert.Zero(t, polls)
	assert.Zero(t, doomedVotes)
	assert.Equal(t, 3, keptVotes)

	resp = app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/polls/%s/force", doomed.ID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}
