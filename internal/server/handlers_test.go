package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictlive/sanrentan/internal/config"
	"github.com/predictlive/sanrentan/internal/leaderboard"
	"github.com/predictlive/sanrentan/internal/store/memory"
	"github.com/predictlive/sanrentan/internal/tournament"
)

const testSecret = "super-secret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)

	controller, err := tournament.NewController(context.Background(), memory.New(), tournament.Options{
		DefaultPrompt:  "Podium order?",
		DefaultOptions: []string{"A", "B", "C", "D"},
	}, logger)
	require.NoError(t, err)

	lb := leaderboard.NewService(controller, nil, logger, leaderboard.ServiceOptions{})
	cfg := &config.App{
		HTTPAddr: "127.0.0.1:0",
		Security: config.Security{OrganizerSecret: testSecret},
	}
	return NewHTTPServer(cfg, logger, NewHandlers(controller, lb, logger)).Handler
}

// newCachedTestHandler wires a real miniredis-backed ranking cache with a TTL
// long enough that only explicit invalidation can refresh it.
func newCachedTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	controller, err := tournament.NewController(context.Background(), memory.New(), tournament.Options{
		DefaultPrompt:  "Podium order?",
		DefaultOptions: []string{"A", "B", "C", "D"},
	}, logger)
	require.NoError(t, err)

	lb := leaderboard.NewService(controller, client, logger, leaderboard.ServiceOptions{CacheTTL: time.Hour})
	cfg := &config.App{
		HTTPAddr: "127.0.0.1:0",
		Security: config.Security{OrganizerSecret: testSecret},
	}
	return NewHTTPServer(cfg, logger, NewHandlers(controller, lb, logger)).Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, secret string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(into))
}

func TestOrganizerEndpointsRequireSecret(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/organizer/open", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/open", "wrong-secret", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/open", testSecret, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitWhileClosedReturnsValidationError(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/submissions", "", map[string]any{
		"question_id": 1,
		"name":        "alice",
		"guess":       []string{"A", "B", "C"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Equal(t, tournament.ReasonSubmissionsClosed, resp.Reason)
}

func TestFullRoundTrip(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/organizer/open", testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/submissions", "", map[string]any{
		"question_id": 1, "name": "alice", "guess": []string{"A", "B", "C"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/submissions", "", map[string]any{
		"question_id": 1, "name": "bob", "guess": []string{"B", "A", "C"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Publishing while open must be rejected.
	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/publish", testSecret, map[string]any{
		"correct": []string{"A", "B", "C"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/close", testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/publish", testSecret, map[string]any{
		"correct": []string{"A", "B", "C"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var published struct {
		Accepted    bool `json:"accepted"`
		ScoredCount int  `json:"scored_count"`
	}
	decode(t, rec, &published)
	assert.True(t, published.Accepted)
	assert.Equal(t, 2, published.ScoredCount)

	rec = doJSON(t, h, http.MethodGet, "/v1/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state tournament.State
	decode(t, rec, &state)
	assert.Equal(t, tournament.PhaseRevealed, state.Phase)
	require.NotNil(t, state.Correct)

	rec = doJSON(t, h, http.MethodGet, "/v1/ranking", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ranking struct {
		Ranking []tournament.RankingEntry `json:"ranking"`
	}
	decode(t, rec, &ranking)
	assert.Equal(t, []tournament.RankingEntry{
		{Name: "alice", Total: 6},
		{Name: "bob", Total: 4},
	}, ranking.Ranking)
}

func TestResubmissionAfterRevealRefreshesRanking(t *testing.T) {
	h := newCachedTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/organizer/open", testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/v1/submissions", "", map[string]any{
		"question_id": 1, "name": "alice", "guess": []string{"A", "B", "C"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/close", testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/publish", testSecret, map[string]any{
		"correct": []string{"A", "B", "C"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var ranking struct {
		Ranking []tournament.RankingEntry `json:"ranking"`
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/ranking", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &ranking)
	require.Equal(t, []tournament.RankingEntry{{Name: "alice", Total: 6}}, ranking.Ranking)

	// Reopening and resubmitting resets alice's stored score; the cached
	// snapshot must not keep serving the pre-reset total.
	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/open", testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/v1/submissions", "", map[string]any{
		"question_id": 1, "name": "alice", "guess": []string{"B", "A", "C"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/ranking", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ranking.Ranking = nil
	decode(t, rec, &ranking)
	assert.Equal(t, []tournament.RankingEntry{{Name: "alice", Total: 0}}, ranking.Ranking)
}

func TestListSubmissions(t *testing.T) {
	h := newTestHandler(t)
	doJSON(t, h, http.MethodPost, "/v1/organizer/open", testSecret, nil)
	doJSON(t, h, http.MethodPost, "/v1/submissions", "", map[string]any{
		"question_id": 1, "name": "alice", "guess": []string{"A", "B", "C"},
	})

	rec := doJSON(t, h, http.MethodGet, "/v1/submissions?question_id=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Submissions []tournament.Submission `json:"submissions"`
	}
	decode(t, rec, &listing)
	require.Len(t, listing.Submissions, 1)
	assert.Equal(t, "alice", listing.Submissions[0].Name)

	rec = doJSON(t, h, http.MethodGet, "/v1/submissions?question_id=1&name=ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/submissions", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetQuestionAndReset(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/organizer/question", testSecret, map[string]any{
		"id": 2, "prompt": "Final", "options": []string{"P", "Q", "R"}, "open": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/state", "", nil)
	var state tournament.State
	decode(t, rec, &state)
	assert.Equal(t, 2, state.QuestionID)
	assert.Equal(t, tournament.PhaseOpen, state.Phase)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizer/reset", testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/state", "", nil)
	decode(t, rec, &state)
	assert.Equal(t, 1, state.QuestionID)
	assert.Equal(t, tournament.PhaseClosed, state.Phase)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/state", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
