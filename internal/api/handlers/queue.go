package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multiplayerbase/matchmaking-backend/internal/api/middleware"
	"github.com/multiplayerbase/matchmaking-backend/internal/coordinator"
	"github.com/multiplayerbase/matchmaking-backend/internal/matchmaking"
)

// QueueHandler serves join and leave requests against the waiting queues.
type QueueHandler struct {
	store *matchmaking.Store
	coord *coordinator.Coordinator
}

func NewQueueHandler(store *matchmaking.Store, coord *coordinator.Coordinator) *QueueHandler {
	return &QueueHandler{
		store: store,
		coord: coord,
	}
}

// Join puts the caller into the queue for the given mode and signals the
// coordinator to re-evaluate readiness.
func (h *QueueHandler) Join(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mode := c.Param("mode")

	player, err := h.store.Join(mode, userID)
	if err != nil {
		switch {
		case errors.Is(err, matchmaking.ErrUnknownQueue):
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown queue"})
		case errors.Is(err, matchmaking.ErrAlreadyQueued):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already queued"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join queue"})
		}
		return
	}

	h.coord.CheckQueue(mode)

	c.JSON(http.StatusOK, player)
}

// Leave removes the caller from the queue for the given mode.
func (h *QueueHandler) Leave(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mode := c.Param("mode")

	player, err := h.store.Leave(mode, userID)
	if err != nil {
		switch {
		case errors.Is(err, matchmaking.ErrUnknownQueue):
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown queue"})
		case errors.Is(err, matchmaking.ErrNotQueued):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not queued"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave queue"})
		}
		return
	}

	h.coord.CheckQueue(mode)

	c.JSON(http.StatusOK, player)
}
