package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salescli/internal/config"
	"salescli/internal/dataprocessing"
	apierrors "salescli/internal/errors"
	"salescli/internal/infrastructure"
	customMiddleware "salescli/internal/middleware"
	"salescli/internal/services"
	handlers "salescli/internal/transport/http"
	"salescli/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	SummaryService *services.SummaryService
	HealthService  *services.HealthService
	ErrorHandler   *apierrors.ErrorHandler
}

// NewApplication wires telemetry, loaders, services and the HTTP router.
// The server is created but not started; CLI commands use SummaryService
// directly.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(ctx); err != nil {
		_ = otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	loaderLogger := infrastructure.WithComponent(a.Logger, "loader")
	loader := &dataprocessing.SourceLoader{
		Files: dataprocessing.NewFileLoader(a.Config.Input.Sheet, loaderLogger),
	}
	if a.Config.Input.CredentialsFile != "" {
		sheetsLoader, err := dataprocessing.NewSheetsLoader(ctx, a.Config.Input.CredentialsFile, a.Config.Input.SheetsRange, loaderLogger)
		if err != nil {
			return err
		}
		loader.Sheets = sheetsLoader
	}

	pipeline := dataprocessing.NewPipeline(infrastructure.WithComponent(a.Logger, "pipeline"),
		a.OTelProviders.Tracer, dataprocessing.DefaultOptions())
	a.SummaryService = services.NewSummaryService(loader, pipeline, metrics, a.OTelProviders.Tracer,
		a.Config.Input, a.Config.Batch, infrastructure.WithComponent(a.Logger, "summary"))

	a.HealthService = services.NewHealthService(contracts.Version, infrastructure.WithComponent(a.Logger, "health"))
	a.HealthService.AddCheck("pipeline", func(context.Context) error { return nil })
	if path := a.Config.Input.CredentialsFile; path != "" {
		a.HealthService.AddCheck("sheets_credentials", func(context.Context) error {
			_, err := os.Stat(path)
			return err
		})
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.ErrorHandler.Middleware)
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	healthHandler.Register(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	r.Route(config.APIPrefix, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		if a.Config.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.RateLimit.RPS,
				a.Config.RateLimit.Burst,
				a.ErrorHandler,
				a.Logger,
			).Handler)
		}

		r.Get("/version", healthHandler.Version)

		summaryHandler := handlers.NewSummaryHandler(a.SummaryService, a.Config.Server.MaxUploadBytes, a.Logger, a.ErrorHandler)
		r.Mount(config.SummariesEndpoint, summaryHandler.Routes())
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Address(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Serve accepts connections on l until ctx is cancelled, then shuts the
// server down gracefully
func (a *Application) Serve(ctx context.Context, l net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", l.Addr().String()))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Server.Serve(l)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutdown requested")
	}

	return a.Stop(context.WithoutCancel(ctx))
}

// Run listens on the configured address and serves until ctx is cancelled.
// Telemetry is released on every return path.
func (a *Application) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		err = fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
		return errors.Join(err, a.Close(context.WithoutCancel(ctx)))
	}
	return a.Serve(ctx, l)
}

// Stop shuts the server down and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Close flushes and releases telemetry providers. CLI commands that never
// start the server call this directly.
func (a *Application) Close(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		return fmt.Errorf("opentelemetry shutdown error: %w", err)
	}
	return nil
}
