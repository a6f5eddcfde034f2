// Package app wires configuration, storage, providers and HTTP handlers into
// a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"promptly/internal/config"
	"promptly/internal/database"
	"promptly/internal/handlers"
	"promptly/internal/metrics"
	"promptly/internal/middleware"
	"promptly/internal/providers"
	"promptly/internal/repositories"
	"promptly/internal/services"
	"promptly/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the already-constructed collaborators of the HTTP app.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Provider  providers.TextGenerator
	Publisher services.EventPublisher // nil disables lifecycle events
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	AccessLog io.Writer // defaults to os.Stdout
}

// NewFiberApp builds the Fiber app with every route mounted.
func NewFiberApp(deps Dependencies) (*fiber.App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	accessLog := deps.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}
	m := metrics.New(registry)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	textRepo := repositories.NewGORMGeneratedTextRepository(deps.DB)

	// --- Services ---
	userService, err := services.NewUserService(userRepo, services.NewBcryptCredentialStore(deps.Config.BcryptCost))
	if err != nil {
		return nil, err
	}
	authService := services.NewAuthService(userService, deps.Config.JWT.Secret, deps.Config.JWT.Expiration)
	generationService := services.NewGenerationService(deps.Provider, m)
	textService := services.NewGeneratedTextService(textRepo, generationService, deps.Publisher, logger)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService, authService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	textHandler := handlers.NewGeneratedTextHandler(textService, logger)

	app := fiber.New(fiber.Config{
		AppName:               "promptly",
		ErrorHandler:          handlers.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: accessLog,
	}))
	app.Use(m.Middleware())

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if err := pingDB(c.UserContext(), deps.DB); err != nil {
			logger.Warn("health check failed", "error", err)
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", metrics.Handler(registry))

	// --- API Routes ---
	auth := middleware.AuthRequired(authService, logger, m)
	authHandler.RegisterRoutes(app)
	userHandler.RegisterRoutes(app, auth)
	textHandler.RegisterRoutes(app, auth)

	return app, nil
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Server owns the HTTP app and the resources it was built from.
type Server struct {
	app     *fiber.App
	addr    string
	logger  *slog.Logger
	closers []func() error
}

// NewServer opens the database, applies migrations when configured, picks
// the provider and connects to RabbitMQ when a URL is set.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{addr: cfg.AppPort, logger: logger}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.Database.Driver, logger); err != nil {
			return nil, errors.Join(err, s.Close())
		}
	}

	provider, err := providers.New(cfg.Provider)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}
	logger.Info("text generation provider selected", "provider", cfg.Provider.Name)

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: services.GeneratedTextExchange,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to initialize RabbitMQ client: %w", err), s.Close())
		}
		s.closers = append(s.closers, mqClient.Close)
		publisher = mqClient
	} else {
		logger.Info("RABBITMQ_URL not set, lifecycle events disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.app, err = NewFiberApp(Dependencies{
		Config:    cfg,
		DB:        db,
		Provider:  provider,
		Publisher: publisher,
		Logger:    logger,
		Registry:  registry,
	})
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.addr)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("error during Fiber shutdown: %w", err)
	}
	s.logger.Info("server gracefully stopped")
	return nil
}

// Close releases the database and RabbitMQ connections in reverse order.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
