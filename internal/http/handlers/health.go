package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Backend is the part of the generative client the readiness probe needs.
type Backend interface {
	Ping(ctx context.Context) error
	Model() string
}

type HealthHandler struct {
	backend Backend
}

func NewHealthHandler(backend Backend) *HealthHandler { return &HealthHandler{backend: backend} }

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz reports whether the generative backend still answers.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.backend == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no generative backend"})
		return
	}
	if err := h.backend.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "model": h.backend.Model(), "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "model": h.backend.Model()})
}
