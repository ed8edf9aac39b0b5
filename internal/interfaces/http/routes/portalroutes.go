package routes

import (
	"github.com/gin-gonic/gin"

	vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/live"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
)

type PortalRouteConfig struct {
	InteractionHandler   *handlers.InteractionHandler
	UploadHandler        *handlers.UploadHandler
	LiveHandler          *live.Handler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupPortalRoutes registers the interaction history, uploads and the live
// WebSocket. Live subscriptions are authorized one by one on the socket.
func SetupPortalRoutes(root, api *gin.RouterGroup, config *PortalRouteConfig) {
	perm := config.PermissionMiddleware
	requireAuth := config.AuthMiddleware.RequireAuth()

	api.GET("/interactions",
		requireAuth,
		perm.RequirePermission(vo.ResourceInteraction, vo.ActionRead),
		config.InteractionHandler.List)

	api.POST("/uploads",
		requireAuth,
		perm.RequirePermission(vo.ResourceUpload, vo.ActionCreate),
		config.UploadHandler.Upload)

	root.GET("/ws/live", requireAuth, config.LiveHandler.Connect)
}
