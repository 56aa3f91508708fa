package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiplayerbase/matchmaking-backend/internal/api/middleware"
	"github.com/multiplayerbase/matchmaking-backend/internal/coordinator"
	"github.com/multiplayerbase/matchmaking-backend/internal/gameserver"
	"github.com/multiplayerbase/matchmaking-backend/internal/matchmaking"
	jwtutil "github.com/multiplayerbase/matchmaking-backend/pkg/jwt"
)

type stubManager struct{}

func (stubManager) Spawn(ctx context.Context) (*gameserver.Description, error) {
	return &gameserver.Description{Host: "play.example.com", Port: 7777, CreatedAt: time.Now()}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *jwtutil.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := matchmaking.NewStore([]string{"solo"})
	policy := matchmaking.Policy{MinSize: 2, DesiredSize: 4, MaxWait: time.Minute}

	coord := coordinator.New(store, policy, stubManager{}, time.Second)
	coord.Start()
	t.Cleanup(coord.Stop)

	manager := jwtutil.NewManager("test-secret", time.Hour)
	handler := NewQueueHandler(store, coord)

	router := gin.New()
	queue := router.Group("/queue", middleware.Auth(manager))
	queue.POST("/:mode/join/", handler.Join)
	queue.POST("/:mode/leave/", handler.Leave)

	return router, manager
}

func doRequest(t *testing.T, router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestQueueHandler_Join(t *testing.T) {
	router, manager := newTestRouter(t)

	userID := uuid.New()
	token, err := manager.Generate(userID)
	require.NoError(t, err)

	w := doRequest(t, router, "/queue/solo/join/", token)
	require.Equal(t, http.StatusOK, w.Code)

	var player matchmaking.WaitingPlayer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &player))
	assert.Equal(t, userID, player.UserID)
	assert.WithinDuration(t, time.Now(), player.JoinedAt, 5*time.Second)
}

func TestQueueHandler_JoinDuplicate(t *testing.T) {
	router, manager := newTestRouter(t)

	token, err := manager.Generate(uuid.New())
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, doRequest(t, router, "/queue/solo/join/", token).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, router, "/queue/solo/join/", token).Code)
}

func TestQueueHandler_JoinUnknownMode(t *testing.T) {
	router, manager := newTestRouter(t)

	token, err := manager.Generate(uuid.New())
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, doRequest(t, router, "/queue/ranked/join/", token).Code)
}

func TestQueueHandler_JoinUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, "/queue/solo/join/", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, "/queue/solo/join/", "bogus").Code)
}

func TestQueueHandler_LeaveRoundTrip(t *testing.T) {
	router, manager := newTestRouter(t)

	userID := uuid.New()
	token, err := manager.Generate(userID)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, doRequest(t, router, "/queue/solo/join/", token).Code)

	w := doRequest(t, router, "/queue/solo/leave/", token)
	require.Equal(t, http.StatusOK, w.Code)

	var player matchmaking.WaitingPlayer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &player))
	assert.Equal(t, userID, player.UserID)

	// A second leave finds nothing.
	assert.Equal(t, http.StatusBadRequest, doRequest(t, router, "/queue/solo/leave/", token).Code)
}
