package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamdraw/teamdraw-go/internal/api"
	"github.com/teamdraw/teamdraw-go/internal/api/response"
	"github.com/teamdraw/teamdraw-go/internal/factory"
)

const adminToken = "test-admin-token"

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Registry:        app.Registry,
		DrawEngine:      app.DrawEngine,
		Notifier:        app.Notifier,
		AdminToken:      adminToken,
		RegistrationURL: "http://localhost:8080",
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// register creates a participant with a known id and fails the test on error
func (ts *testServer) register(t *testing.T, id, username, team string) response.Participant {
	t.Helper()

	ts.app.MockRandom.QueueString(id)
	rr := ts.request(http.MethodPost, "/api/v1/participants", map[string]string{
		"username": username,
		"team":     team,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.Participant
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterParticipant(t *testing.T) {
	ts := newTestServer(t)

	p := ts.register(t, "p1", "Alice", "blue")
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, "blue", p.Team)
	assert.Equal(t, "Sabiduría", p.TeamName)
	assert.Equal(t, "active", p.Status)
	assert.False(t, p.RegisteredAt.IsZero())
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/participants", map[string]string{
		"username": "   ",
		"team":     "blue",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "EMPTY_USERNAME", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/participants", map[string]string{
		"username": "Alice",
		"team":     "green",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_TEAM", errorCode(t, rr))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/participants", bytes.NewBufferString("not json"))
	malformed := httptest.NewRecorder()
	ts.handler.ServeHTTP(malformed, req)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "p1", "Alice", "blue")

	ts.app.MockRandom.QueueString("p2")
	rr := ts.request(http.MethodPost, "/api/v1/participants", map[string]string{
		"username": "ALICE",
		"team":     "red",
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "DUPLICATE_USERNAME", errorCode(t, rr))
}

func TestListAndStats(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "p1", "Alice", "blue")
	ts.register(t, "p2", "Bob", "yellow")

	rr := ts.request(http.MethodGet, "/api/v1/participants", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var snapshot response.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.Participants, 2)
	assert.Equal(t, "Alice", snapshot.Participants[0].Username)
	assert.Equal(t, "Bob", snapshot.Participants[1].Username)
	assert.Equal(t, 2, snapshot.Stats.Total)
	assert.Equal(t, 2, snapshot.Stats.Active)

	rr = ts.request(http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats response.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
}

func TestGetParticipant(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "p1", "Alice", "blue")

	rr := ts.request(http.MethodGet, "/api/v1/participants/p1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var p response.Participant
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "Alice", p.Username)

	rr = ts.request(http.MethodGet, "/api/v1/participants/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "PARTICIPANT_NOT_FOUND", errorCode(t, rr))
}

func TestAdminAuth(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", "Alice", "blue")

	// No token
	rr := ts.request(http.MethodDelete, "/api/v1/admin/participants/p1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Wrong token
	rr = ts.request(http.MethodDelete, "/api/v1/admin/participants/p1", nil, "wrong-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Token via query parameter, for clients that cannot set headers
	rr = ts.request(http.MethodDelete, "/api/v1/admin/participants/p1?admin_token="+adminToken, nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestAdminRoutesDisabledWithoutToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app := factory.NewTestApp()
	handler := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Registry:   app.Registry,
		DrawEngine: app.DrawEngine,
		Notifier:   app.Notifier,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/draw/spin", nil)
	req.Header.Set("Authorization", "Bearer ")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminDeleteParticipant(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", "Alice", "blue")

	rr := ts.request(http.MethodDelete, "/api/v1/admin/participants/p1", nil, adminToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/participants/p1", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/admin/participants/p1", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminUpdateStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", "Alice", "blue")

	rr := ts.request(http.MethodPatch, "/api/v1/admin/participants/p1/status", map[string]string{
		"status": "winner",
	}, adminToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var p response.Participant
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "winner", p.Status)

	rr = ts.request(http.MethodPatch, "/api/v1/admin/participants/p1/status", map[string]string{
		"status": "eliminated",
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_STATUS", errorCode(t, rr))
}

func TestAdminClearAll(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", "Alice", "blue")
	ts.register(t, "p2", "Bob", "red")

	rr := ts.request(http.MethodDelete, "/api/v1/admin/participants", nil, adminToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats response.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Total)
}

func TestAdminResetGame(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", "Alice", "blue")
	ts.register(t, "p2", "Bob", "red")

	rr := ts.request(http.MethodPatch, "/api/v1/admin/participants/p1/status", map[string]string{
		"status": "discarded",
	}, adminToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/admin/participants/reset", nil, adminToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var reset response.Reset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reset))
	assert.Equal(t, 1, reset.Reactivated)

	rr = ts.request(http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats response.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Active)
}

func TestDrawFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", "Alice", "blue")
	ts.register(t, "p2", "Bob", "yellow")

	// Draw status starts idle
	rr := ts.request(http.MethodGet, "/api/v1/draw", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var status response.DrawStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "idle", status.State)
	assert.Nil(t, status.Selected)

	// Spin lands on the second participant with a zero offset
	ts.app.MockRandom.QueueFloat64(0.0)
	rr = ts.request(http.MethodPost, "/api/v1/admin/draw/spin", nil, adminToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var spin response.Spin
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spin))
	assert.Equal(t, "Bob", spin.Participant.Username)
	assert.Equal(t, 1, spin.Index)
	assert.Equal(t, 2, spin.PoolSize)
	assert.Equal(t, 1800.0, spin.TotalRotation)

	// Deciding during the reveal window is rejected
	rr = ts.request(http.MethodPost, "/api/v1/admin/draw/decide", map[string]string{
		"decision": "winner",
	}, adminToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "SPIN_IN_PROGRESS", errorCode(t, rr))

	ts.app.MockClock.Advance(6 * time.Second)

	rr = ts.request(http.MethodGet, "/api/v1/draw", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "awaiting_decision", status.State)
	require.NotNil(t, status.Selected)
	assert.Equal(t, "Bob", status.Selected.Username)

	rr = ts.request(http.MethodPost, "/api/v1/admin/draw/decide", map[string]string{
		"decision": "winner",
	}, adminToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var decided response.Participant
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decided))
	assert.Equal(t, "Bob", decided.Username)
	assert.Equal(t, "winner", decided.Status)

	// Round reset reactivates the winner
	rr = ts.request(http.MethodPost, "/api/v1/admin/draw/reset", nil, adminToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var reset response.Reset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reset))
	assert.Equal(t, 1, reset.Reactivated)
}

func TestSpinEmptyPool(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/admin/draw/spin", nil, adminToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "EMPTY_POOL", errorCode(t, rr))
}

func TestDecideWithoutSelection(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/admin/draw/decide", map[string]string{
		"decision": "winner",
	}, adminToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "NO_SELECTION", errorCode(t, rr))
}

func TestQRCode(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/qr", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	// PNG magic bytes
	require.True(t, rr.Body.Len() > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rr.Body.Bytes()[:4])
}

func TestEventsInitialSnapshot(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", "Alice", "blue")

	// A pre-cancelled context makes the stream return right after the
	// initial snapshot frame
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "event: snapshot\n")
	assert.Contains(t, body, `"username":"Alice"`)
}
