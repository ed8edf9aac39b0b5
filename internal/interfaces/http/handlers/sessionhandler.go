package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/access"
	"github.com/frankincense-labs/cx-management/internal/application/identity/dto"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

// SessionHandler exposes the identity state of the calling browser and the
// view gate built on it.
type SessionHandler struct {
	logger logger.Interface
}

func NewSessionHandler(logger logger.Interface) *SessionHandler {
	return &SessionHandler{logger: logger}
}

type GateResponse struct {
	Path     string          `json:"path"`
	Decision access.Decision `json:"decision"`
	Session  *dto.SessionDTO `json:"session"`
}

// GetSession handles GET /api/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	store, ok := sessionStoreFrom(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewInternalError("session unavailable"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToSessionDTO(store.Current()))
}

// Gate handles GET /api/gate?path=/admin/dashboard
func (h *SessionHandler) Gate(c *gin.Context) {
	store, ok := sessionStoreFrom(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewInternalError("session unavailable"))
		return
	}

	path := c.Query("path")
	if path == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("path is required"))
		return
	}

	state := store.Current()
	utils.SuccessResponse(c, http.StatusOK, "", GateResponse{
		Path:     path,
		Decision: access.Resolve(path, state),
		Session:  dto.ToSessionDTO(state),
	})
}
