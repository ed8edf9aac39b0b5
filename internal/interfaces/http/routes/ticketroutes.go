package routes

import (
	"github.com/gin-gonic/gin"

	vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	tickethandlers "github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/ticket"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
)

type TicketRouteConfig struct {
	TicketHandler        *tickethandlers.Handler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

func SetupTicketRoutes(api *gin.RouterGroup, config *TicketRouteConfig) {
	perm := config.PermissionMiddleware

	tickets := api.Group("/tickets")
	tickets.Use(config.AuthMiddleware.RequireAuth())
	{
		// Collection operations (no ID parameter)
		tickets.POST("",
			perm.RequirePermission(vo.ResourceTicket, vo.ActionCreate),
			config.TicketHandler.Create)
		tickets.GET("",
			perm.RequirePermission(vo.ResourceTicket, vo.ActionList),
			config.TicketHandler.ListAll)

		// Specific named endpoints (must come BEFORE /:id to avoid conflicts)
		tickets.GET("/mine",
			perm.RequirePermission(vo.ResourceTicket, vo.ActionRead),
			config.TicketHandler.ListMine)
		tickets.GET("/board",
			perm.RequirePermission(vo.ResourceTicket, vo.ActionList),
			config.TicketHandler.Board)

		tickets.GET("/:id/replies",
			perm.RequirePermission(vo.ResourceTicketReply, vo.ActionRead),
			config.TicketHandler.ListReplies)
		tickets.POST("/:id/replies",
			perm.RequirePermission(vo.ResourceTicketReply, vo.ActionCreate),
			config.TicketHandler.AddReply)
		tickets.PATCH("/:id/status",
			perm.RequirePermission(vo.ResourceTicket, vo.ActionUpdate),
			config.TicketHandler.ChangeStatus)

		tickets.GET("/:id",
			perm.RequirePermission(vo.ResourceTicket, vo.ActionRead),
			config.TicketHandler.Get)
	}
}
