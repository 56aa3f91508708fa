package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Hello is the service banner.
func Hello(c *gin.Context) {
	c.String(http.StatusOK, "MultiplayerBase Matchmaking")
}

// HealthCheck reports whether the service is running.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "matchmaking-backend",
	})
}
