package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multiplayerbase/matchmaking-backend/internal/websocket"
	jwtutil "github.com/multiplayerbase/matchmaking-backend/pkg/jwt"
)

// ListenHandler upgrades authenticated clients to a realtime connection.
type ListenHandler struct {
	registry websocket.Registry
	jwt      *jwtutil.Manager
}

func NewListenHandler(registry websocket.Registry, jwt *jwtutil.Manager) *ListenHandler {
	return &ListenHandler{
		registry: registry,
		jwt:      jwt,
	}
}

// Listen verifies the token query parameter and hands the connection to a
// realtime session. Browsers cannot set headers on websocket dials, so the
// credential travels as a query parameter here.
func (h *ListenHandler) Listen(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	claims, err := h.jwt.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
		return
	}

	websocket.ServeWs(h.registry, c.Writer, c.Request, userID)
}
