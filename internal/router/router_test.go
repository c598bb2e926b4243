package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"waitroom/internal/config"
	"waitroom/internal/engine"
	"waitroom/internal/handlers"
	"waitroom/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type gameResponse struct {
	Outcome      string  `json:"outcome"`
	Phase        string  `json:"phase"`
	CurrentRound int     `json:"current_round"`
	TotalRounds  int     `json:"total_rounds"`
	TrialType    *string `json:"trial_type"`
	Message      string  `json:"message"`
	Hits         int     `json:"hits"`
	Misses       int     `json:"misses"`
	FalseClicks  int     `json:"false_clicks"`
	AvgReaction  int     `json:"avg_reaction_time_ms"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

func setupTestRouter(t *testing.T, rateLimit int) (*gin.Engine, *engine.ManualClock) {
	t.Helper()
	log := zaptest.NewLogger(t)
	clock := engine.NewManualClock(time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC))

	settings := engine.DefaultSettings()
	settings.TotalRounds = 2
	settings.FalseTargetRate = 0
	settings.MinWait = time.Second
	settings.MaxWait = time.Second
	eng, err := engine.New(settings, log, engine.WithClock(clock))
	require.NoError(t, err)

	conf := config.ServerConfig{Port: "0", RateLimit: rateLimit}
	return Setup(log, conf, handlers.NewGameHandler(log, eng)), clock
}

func perform(t *testing.T, r *gin.Engine, method, path string) (*httptest.ResponseRecorder, gameResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	var body gameResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestSnapshotEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t, 10)

	w, body := perform(t, r, http.MethodGet, "/game")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", body.Phase)
	assert.Equal(t, 2, body.TotalRounds)
	assert.Nil(t, body.TrialType)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestFullSessionOverHTTP(t *testing.T) {
	r, clock := setupTestRouter(t, 10)

	w, body := perform(t, r, http.MethodPost, "/game/start")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "countdown", body.Phase)

	clock.Advance(3 * time.Second)
	_, body = perform(t, r, http.MethodPost, "/game/click")
	assert.Equal(t, "early", body.Outcome)
	assert.Equal(t, 1, body.FalseClicks)

	clock.Advance(time.Second)
	_, body = perform(t, r, http.MethodGet, "/game")
	assert.Equal(t, "stimulus", body.Phase)
	require.NotNil(t, body.TrialType)
	assert.Equal(t, "go", *body.TrialType)

	clock.Advance(280 * time.Millisecond)
	_, body = perform(t, r, http.MethodPost, "/game/click")
	assert.Equal(t, "hit", body.Outcome)
	assert.Equal(t, "waiting", body.Phase)
	assert.Equal(t, 2, body.CurrentRound)

	clock.Advance(time.Second + 900*time.Millisecond)
	_, body = perform(t, r, http.MethodGet, "/game")
	assert.Equal(t, "finished", body.Phase)
	assert.Equal(t, 1, body.Hits)
	assert.Equal(t, 1, body.Misses)
	assert.Equal(t, 0.5, body.AccuracyRate)
	assert.Equal(t, 280, body.AvgReaction)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/result", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.EqualValues(t, 2, result["rounds_completed"])
	assert.EqualValues(t, 1, result["false_clicks"])
	assert.Equal(t, []any{float64(280)}, result["reaction_times_ms"])
}

func TestTrialsEndpoint(t *testing.T) {
	r, clock := setupTestRouter(t, 10)

	perform(t, r, http.MethodPost, "/game/start")
	clock.Advance(4 * time.Second)
	clock.Advance(150 * time.Millisecond)
	perform(t, r, http.MethodPost, "/game/click")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/trials", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var trials []models.TrialRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trials))
	require.Len(t, trials, 1)
	assert.Equal(t, models.OutcomeHit, trials[0].Outcome)
	require.NotNil(t, trials[0].ReactionTimeMs)
	assert.Equal(t, 150, *trials[0].ReactionTimeMs)
}

func TestResultFormats(t *testing.T) {
	r, _ := setupTestRouter(t, 10)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/result?format=yaml", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml; charset=utf-8", w.Header().Get("Content-Type"))
	var result map[string]any
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "waitroom_go_nogo_v1", result["game_type"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/result?format=csv", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChartEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t, 10)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/chart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Reaction time")
}

func TestResetReturnsToIdle(t *testing.T) {
	r, clock := setupTestRouter(t, 10)

	perform(t, r, http.MethodPost, "/game/start")
	clock.Advance(4 * time.Second)

	w, body := perform(t, r, http.MethodPost, "/game/reset")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", body.Phase)
	assert.Zero(t, body.CurrentRound)
	assert.Zero(t, clock.Pending())
}

func TestStartIsRateLimited(t *testing.T) {
	r, _ := setupTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		w, _ := perform(t, r, http.MethodPost, "/game/start")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, _ := perform(t, r, http.MethodPost, "/game/start")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Clicks are never limited.
	w, _ = perform(t, r, http.MethodPost, "/game/click")
	assert.Equal(t, http.StatusOK, w.Code)
}
