package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"lgpsreport/internal/config"
	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/infrastructure"
	"lgpsreport/internal/insights"
	customMiddleware "lgpsreport/internal/middleware"
	"lgpsreport/internal/operations"
	"lgpsreport/internal/reconstruct"
	"lgpsreport/internal/services"
	handlers "lgpsreport/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Services      *ServiceContainer

	errorHandler *apperrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Reconstruct *services.ReconstructService
	Operations  *services.OperationsService
	Health      *services.HealthService
}

// NewApplication loads configFile (empty searches the default locations)
// and wires the HTTP server around it.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	logger.Info("Paths resolved",
		slog.String("raw_dir", paths.RawDir),
		slog.String("compiled_dir", paths.CompiledDir),
		slog.String("reports_dir", paths.ReportsDir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Metrics), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		errorHandler:  apperrors.NewErrorHandler(logger, strings.EqualFold(cfg.Logging.Level, "debug")),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	reconMetrics, err := infrastructure.NewReconstructionMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create reconstruction metrics: %w", err)
	}
	pipelineMetrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	engineOpts := reconstruct.Options{
		StructuralLabels: a.Config.Reconstruct.StructuralLabels,
		EntityColumn:     a.Config.Reconstruct.EntityColumn,
		Logger:           a.Logger,
		Recorder:         reconMetrics,
	}

	// nil when insights are disabled
	writer, err := insights.New(context.Background(), a.Config.Insights, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize insights: %w", err)
	}

	manager, err := operations.NewPipeline(operations.Dependencies{
		Config:   a.Config,
		Paths:    a.Paths,
		Logger:   a.Logger,
		Engine:   reconstruct.NewEngine(engineOpts),
		Insights: writer,
		Metrics:  pipelineMetrics,
	}, operations.NewConfig())
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	a.Services = &ServiceContainer{
		Reconstruct: services.NewReconstructService(engineOpts, a.Logger),
		Operations:  services.NewOperationsService(manager, a.Logger),
		Health:      services.NewHealthService(config.AppVersion, a.Paths, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes. Middleware order:
// RequestID → RealIP → OTel → Logger → Recoverer → security → limits.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.errorHandler.Middleware)
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	if a.Config.Server.MaxBodyBytes > 0 {
		r.Use(customMiddleware.MaxBodyBytes(a.Config.Server.MaxBodyBytes))
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Get("/readyz", healthHandler.ReadinessCheck)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.setupAPIRoutes(r, healthHandler)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, health *handlers.HealthHandler) {
	reconstructHandler := handlers.NewReconstructHandler(a.Services.Reconstruct, a.errorHandler, a.Logger)
	operationsHandler := handlers.NewOperationsHandler(a.Services.Operations, a.errorHandler, a.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/version", health.Version)
		r.Post("/reconstruct", reconstructHandler.Reconstruct)
		r.Post("/parse-numeric", reconstructHandler.ParseNumeric)
		r.Get("/runs", operationsHandler.Status)
		r.Post("/runs", operationsHandler.Run)
		r.Get("/runs/{id}", operationsHandler.Progress)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start serves HTTP in the background. A listener failure calls cancel so
// Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	return nil
}

// Run starts the server and blocks until SIGINT/SIGTERM or a server failure.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("Context cancelled, shutting down")
	}

	return a.Stop(context.Background())
}
