package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports process liveness and the active store mode
type HealthHandler struct {
	storeMode string
}

// NewHealthHandler creates a new HealthHandler. storeMode is "mysql"
// or "memory" depending on what the process connected to at boot.
func NewHealthHandler(storeMode string) *HealthHandler {
	return &HealthHandler{storeMode: storeMode}
}

// Check handles GET /healthz
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  h.storeMode,
	})
}
