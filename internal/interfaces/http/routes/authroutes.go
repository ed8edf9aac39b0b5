package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
)

type AuthRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	SessionHandler *handlers.SessionHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupAuthRoutes registers session, gate and sign-in routes. None of them
// require a signed-in session except account deletion.
func SetupAuthRoutes(api *gin.RouterGroup, config *AuthRouteConfig) {
	api.GET("/session", config.SessionHandler.GetSession)
	api.GET("/gate", config.SessionHandler.Gate)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", config.AuthHandler.SignUp)
		auth.POST("/signin", config.AuthHandler.SignIn)
		auth.POST("/signout", config.AuthHandler.SignOut)

		auth.POST("/federated/google", config.AuthHandler.StartGoogle)
		auth.GET("/federated/google/callback", config.AuthHandler.GoogleCallback)

		auth.DELETE("/account",
			config.AuthMiddleware.RequireAuth(),
			config.AuthHandler.DeleteAccount)
	}
}
