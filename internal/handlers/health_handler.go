package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/getmentor/mentorship-api/internal/repository"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthcheckTimeout = 2 * time.Second

type HealthHandler struct {
	store repository.HealthChecker
}

func NewHealthHandler(store repository.HealthChecker) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthcheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.Warn("Healthcheck failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
