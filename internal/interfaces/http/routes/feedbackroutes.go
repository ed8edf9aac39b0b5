package routes

import (
	"github.com/gin-gonic/gin"

	vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	feedbackhandlers "github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/feedback"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
)

type FeedbackRouteConfig struct {
	FeedbackHandler      *feedbackhandlers.Handler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

func SetupFeedbackRoutes(api *gin.RouterGroup, config *FeedbackRouteConfig) {
	perm := config.PermissionMiddleware

	feedback := api.Group("/feedback")
	feedback.Use(config.AuthMiddleware.RequireAuth())
	{
		feedback.POST("",
			perm.RequirePermission(vo.ResourceFeedback, vo.ActionCreate),
			config.FeedbackHandler.Submit)
		feedback.GET("",
			perm.RequirePermission(vo.ResourceFeedback, vo.ActionList),
			config.FeedbackHandler.ListAll)

		// Named paths before /:id
		feedback.GET("/mine",
			perm.RequirePermission(vo.ResourceFeedback, vo.ActionRead),
			config.FeedbackHandler.ListMine)
		feedback.GET("/review",
			perm.RequirePermission(vo.ResourceFeedback, vo.ActionList),
			config.FeedbackHandler.ReviewBoard)

		feedback.POST("/:id/review",
			perm.RequirePermission(vo.ResourceFeedback, vo.ActionReview),
			config.FeedbackHandler.MarkReviewed)
	}
}
