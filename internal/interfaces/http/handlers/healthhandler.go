package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	version string
	logger  logger.Interface
}

func NewHealthHandler(db Pinger, version string, logger logger.Interface) *HealthHandler {
	return &HealthHandler{db: db, version: version, logger: logger}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Version: h.version, Database: "ok"}
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warnw("health check database ping failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			utils.SuccessResponse(c, http.StatusServiceUnavailable, "", resp)
			return
		}
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}
