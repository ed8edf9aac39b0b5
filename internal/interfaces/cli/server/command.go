package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	fbusecases "github.com/frankincense-labs/cx-management/internal/application/feedback/usecases"
	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/application/notification"
	appPermission "github.com/frankincense-labs/cx-management/internal/application/permission"
	ticketusecases "github.com/frankincense-labs/cx-management/internal/application/ticket/usecases"
	"github.com/frankincense-labs/cx-management/internal/application/upload"
	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/auth"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/config"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/database"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/email"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/migration"
	infraPermission "github.com/frankincense-labs/cx-management/internal/infrastructure/permission"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/pubsub"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/ratelimit"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/repository"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/scheduler"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/storage"
	httpRouter "github.com/frankincense-labs/cx-management/internal/interfaces/http"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	feedbackhandlers "github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/feedback"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/live"
	tickethandlers "github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/ticket"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/constants"
	sharedDB "github.com/frankincense-labs/cx-management/internal/shared/db"
	"github.com/frankincense-labs/cx-management/internal/shared/goroutine"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/services/markdown"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
	"github.com/frankincense-labs/cx-management/internal/shared/version"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 30 * time.Second
	eventBufferSize = 256
)

var (
	env            string
	configPath     string
	skipMigrations bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the customer experience portal HTTP server with specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	// Only the log level is applied on reload; everything else needs a restart.
	config.Watch(func(c *config.Config) {
		logger.SetLevel(logger.ParseLevel(c.Logger.Level))
		log.Infow("configuration reloaded", "log_level", c.Logger.Level)
	})

	log.Infow("starting server",
		"environment", env,
		"version", version.String(),
		"database_driver", cfg.Database.Driver,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db := database.Get()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if !skipMigrations {
		if err := migration.NewManager(cfg.Database.MigrationStrategy, cfg.Database.Driver, log).Migrate(db); err != nil {
			return err
		}
	}

	enforcer, err := infraPermission.NewEnforcer(db, logger.NewComponentLogger("permission"))
	if err != nil {
		return fmt.Errorf("failed to initialize permission enforcer: %w", err)
	}
	if err := infraPermission.SeedDefaults(enforcer, log); err != nil {
		return fmt.Errorf("failed to seed permission policies: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	background := goroutine.NewGroup(log)
	defer background.Wait()
	defer stop()

	hub := livequery.NewHub(logger.NewComponentLogger("livequery"))
	defer hub.Close()

	redisClient := newRedisClient(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Writes notify the local hub directly; with Redis they are also fanned
	// out to the other instances.
	var changes livequery.Notifier = hub
	if redisClient != nil {
		bus := pubsub.NewRedisChangeBus(redisClient, hub, logger.NewComponentLogger("changebus"))
		changes = bus
		background.Go("changebus", func() {
			if err := bus.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, redis.ErrClosed) {
				log.Errorw("change bus stopped", "error", err)
			}
		})
	}

	dispatcher := events.NewInMemoryEventDispatcher(eventBufferSize, logger.NewComponentLogger("events"))
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	defer func() {
		if err := dispatcher.Stop(); err != nil {
			log.Errorw("failed to stop event dispatcher", "error", err)
		}
	}()

	feedbackRepo := repository.NewFeedbackRepository(db, changes)
	ticketRepo := repository.NewTicketRepository(db, changes)
	replyRepo := repository.NewTicketReplyRepository(db, changes)
	profileRepo := repository.NewProfileRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	notifier := notification.NewNotifier(
		email.NewMailer(cfg.Email, logger.NewComponentLogger("mailer")),
		markdown.NewRenderer(),
		portalURL(cfg),
		logger.NewComponentLogger("notification"),
	)
	if err := notifier.Register(dispatcher); err != nil {
		return fmt.Errorf("failed to register notifier: %w", err)
	}

	credentials := auth.NewPasswordCredentialService(
		credentialRepo,
		auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost),
		newLoginLimiter(cfg, redisClient),
		time.Duration(cfg.Auth.Session.ReauthMaxAgeHours)*time.Hour,
		logger.NewComponentLogger("credentials"),
	)

	popupTimeout := time.Duration(cfg.OAuth.Google.PopupTimeoutSeconds) * time.Second
	federated := auth.NewGooglePopupAuthenticator(
		auth.NewGoogleOAuthClient(auth.GoogleOAuthConfig{
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			RedirectURL:  cfg.OAuth.Google.RedirectURL,
		}),
		credentialRepo,
		popupTimeout,
		logger.NewComponentLogger("federated"),
	)

	tokens := auth.NewSessionTokenService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	storeLogger := logger.NewComponentLogger("identity")
	transactions := sharedDB.NewTransactionManager(db)
	registry := identity.NewRegistry(func() *identity.Store {
		return identity.NewStore(identity.Dependencies{
			Credentials:  credentials,
			Federated:    federated,
			Profiles:     profileRepo,
			Transactions: transactions,
			AdminCode:    cfg.Auth.AdminCode,
			Logger:       storeLogger,
		})
	}, time.Duration(cfg.Auth.Session.IdleTimeoutMinutes)*time.Minute, storeLogger)
	defer registry.Close()

	jobs, err := scheduler.NewSchedulerManager(logger.NewComponentLogger("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := jobs.RegisterSessionSweep(registry, sweepInterval); err != nil {
		return fmt.Errorf("failed to register session sweep: %w", err)
	}
	jobs.Start()
	defer func() {
		if err := jobs.Shutdown(); err != nil {
			log.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	permissionService := appPermission.NewService(enforcer, logger.NewComponentLogger("permission"))

	// Feedback
	submitFeedbackUC := fbusecases.NewSubmitFeedbackUseCase(feedbackRepo, log)
	reviewFeedbackUC := fbusecases.NewReviewFeedbackUseCase(feedbackRepo, dispatcher, log)
	listFeedbackUC := fbusecases.NewListFeedbackUseCase(feedbackRepo, log)

	// Tickets
	createTicketUC := ticketusecases.NewCreateTicketUseCase(ticketRepo, ticket.NewDefaultNumberGenerator(), log)
	changeStatusUC := ticketusecases.NewChangeStatusUseCase(ticketRepo, dispatcher, log)
	addReplyUC := ticketusecases.NewAddReplyUseCase(ticketRepo, replyRepo, dispatcher, log)
	getTicketUC := ticketusecases.NewGetTicketUseCase(ticketRepo, replyRepo, log)
	listTicketsUC := ticketusecases.NewListTicketsUseCase(ticketRepo, replyRepo, log)

	views := aggregation.NewViews(feedbackRepo, ticketRepo, log)

	blobs, err := storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.PublicURL)
	if err != nil {
		return fmt.Errorf("failed to initialize upload storage: %w", err)
	}
	uploads := upload.NewService(blobs, logger.NewComponentLogger("upload"))

	sessionMiddleware := middleware.NewSessionMiddleware(registry, tokens, credentialRepo, middleware.SessionConfig{
		SessionCookie: cfg.Auth.Session.CookieName,
		TokenCookie:   cfg.Auth.Session.TokenCookieName,
		Cookie: utils.CookieOptions{
			Path:     "/",
			Secure:   cfg.Auth.Session.Secure,
			SameSite: cfg.Auth.Session.SameSite,
		},
	}, log)

	router := httpRouter.NewRouter(httpRouter.RouterDeps{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		FilesDir:       blobs.Root(),

		HealthHandler:      handlers.NewHealthHandler(sqlDB, version.String(), log),
		AuthHandler:        handlers.NewAuthHandler(sessionMiddleware, federated, popupTimeout, cfg.Server.AllowedOrigins, log),
		SessionHandler:     handlers.NewSessionHandler(log),
		InteractionHandler: handlers.NewInteractionHandler(views, log),
		UploadHandler:      handlers.NewUploadHandler(uploads, log),
		FeedbackHandler:    feedbackhandlers.NewHandler(submitFeedbackUC, reviewFeedbackUC, listFeedbackUC, views, log),
		TicketHandler:      tickethandlers.NewHandler(createTicketUC, changeStatusUC, addReplyUC, getTicketUC, listTicketsUC, views, log),
		LiveHandler: live.NewHandler(live.Streams{
			Hub:      hub,
			Feedback: fbusecases.NewFeedbackLiveQueries(hub, feedbackRepo),
			Tickets:  ticketusecases.NewTicketLiveQueries(hub, ticketRepo, replyRepo),
		}, permissionService, getTicketUC, cfg.Server.AllowedOrigins, logger.NewComponentLogger("live")),

		SessionMiddleware:    sessionMiddleware,
		AuthMiddleware:       middleware.NewAuthMiddleware(log),
		PermissionMiddleware: middleware.NewPermissionMiddleware(permissionService, log),

		Logger: log,
	})
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutting down server...", "signal", sig.String())
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

// newRedisClient connects when Redis is enabled. A failed ping disables it
// so the process falls back to in-memory limiting and single-instance
// change delivery.
func newRedisClient(ctx context.Context, cfg *config.Config, log logger.Interface) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnw("redis unavailable, continuing without it", "addr", cfg.Redis.GetAddr(), "error", err)
		client.Close()
		return nil
	}

	log.Infow("redis connected", "addr", cfg.Redis.GetAddr())
	return client
}

func newLoginLimiter(cfg *config.Config, client *redis.Client) ratelimit.FailureLimiter {
	limits := ratelimit.Config{
		MaxFailures: cfg.Auth.Login.MaxFailures,
		Window:      time.Duration(cfg.Auth.Login.WindowMinutes) * time.Minute,
	}
	if client != nil {
		return ratelimit.NewRedisFailureLimiter(client, limits)
	}
	return ratelimit.NewMemoryFailureLimiter(limits)
}

// portalURL is where links in customer emails point. It is the first
// allowed browser origin, or the API base URL when none is configured.
func portalURL(cfg *config.Config) string {
	if len(cfg.Server.AllowedOrigins) > 0 {
		return cfg.Server.AllowedOrigins[0]
	}
	return cfg.Server.BaseURL
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case constants.EnvProduction, "prod", "release":
		return gin.ReleaseMode
	case constants.EnvTest, "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
