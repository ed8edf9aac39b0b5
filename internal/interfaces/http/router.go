package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	feedbackhandlers "github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/feedback"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/live"
	tickethandlers "github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/ticket"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/routes"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"

	_ "github.com/frankincense-labs/cx-management/docs"
)

// RouterDeps carries the handlers and middleware the router mounts.
type RouterDeps struct {
	AllowedOrigins []string
	// FilesDir is served under /files when set.
	FilesDir string

	HealthHandler      *handlers.HealthHandler
	AuthHandler        *handlers.AuthHandler
	SessionHandler     *handlers.SessionHandler
	InteractionHandler *handlers.InteractionHandler
	UploadHandler      *handlers.UploadHandler
	FeedbackHandler    *feedbackhandlers.Handler
	TicketHandler      *tickethandlers.Handler
	LiveHandler        *live.Handler

	SessionMiddleware    *middleware.SessionMiddleware
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware

	Logger logger.Interface
}

// Router represents the HTTP router configuration
type Router struct {
	engine *gin.Engine
	deps   RouterDeps
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		engine: gin.New(),
		deps:   deps,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	d := r.deps

	r.engine.Use(middleware.Recovery(d.Logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CustomLogger(d.Logger))
	r.engine.Use(middleware.CORS(d.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", d.HealthHandler.HealthCheck)
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if d.FilesDir != "" {
		r.engine.Static("/files", d.FilesDir)
	}

	// Everything below needs the caller's identity store.
	session := r.engine.Group("")
	session.Use(d.SessionMiddleware.LoadSession())
	session.Use(middleware.CSRF())

	api := session.Group("/api")

	routes.SetupAuthRoutes(api, &routes.AuthRouteConfig{
		AuthHandler:    d.AuthHandler,
		SessionHandler: d.SessionHandler,
		AuthMiddleware: d.AuthMiddleware,
	})

	routes.SetupFeedbackRoutes(api, &routes.FeedbackRouteConfig{
		FeedbackHandler:      d.FeedbackHandler,
		AuthMiddleware:       d.AuthMiddleware,
		PermissionMiddleware: d.PermissionMiddleware,
	})

	routes.SetupTicketRoutes(api, &routes.TicketRouteConfig{
		TicketHandler:        d.TicketHandler,
		AuthMiddleware:       d.AuthMiddleware,
		PermissionMiddleware: d.PermissionMiddleware,
	})

	routes.SetupPortalRoutes(session, api, &routes.PortalRouteConfig{
		InteractionHandler:   d.InteractionHandler,
		UploadHandler:        d.UploadHandler,
		LiveHandler:          d.LiveHandler,
		AuthMiddleware:       d.AuthMiddleware,
		PermissionMiddleware: d.PermissionMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
