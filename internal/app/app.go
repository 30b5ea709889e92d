package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"gdxtoolbox/internal/archive"
	"gdxtoolbox/internal/config"
	"gdxtoolbox/internal/dataprocessing"
	apierrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/internal/exporter"
	"gdxtoolbox/internal/files"
	"gdxtoolbox/internal/infrastructure"
	customMiddleware "gdxtoolbox/internal/middleware"
	"gdxtoolbox/internal/services"
	handlers "gdxtoolbox/internal/transport/http"
)

const AppName = "gdxtoolbox"

var (
	// Version is set at build time with -ldflags
	Version = "dev"
	// BuildTime is set at build time with -ldflags
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics

	errorHandler *apierrors.ErrorHandler
}

// ServiceContainer holds the import pipeline and the services built on it
type ServiceContainer struct {
	Registry  *archive.Registry
	Importer  *dataprocessing.Importer
	Discovery *files.Discovery
	CSV       *exporter.CSVWriter
	Workbook  *exporter.WorkbookWriter
	Scenario  *services.ScenarioService
	Health    *services.HealthService
}

// NewApplication loads the configuration and builds the application.
// An empty configFile searches the usual locations.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from a loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	if !config.FileExists(paths.EssentialOutputsFile) {
		logger.Warn("Essential outputs file not found",
			slog.String("path", paths.EssentialOutputsFile),
			slog.String("action", "imports limited to essential outputs will fail"))
	}

	providers, err := infrastructure.InitializeOTel(OTelConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	app.Services = NewServices(cfg, paths, providers, metrics, logger)
	app.setupRouter()
	app.createServer()

	return app, nil
}

// OTelConfig derives the OpenTelemetry configuration from the telemetry
// section
func OTelConfig(cfg *config.Config) *infrastructure.OTelConfig {
	otelCfg := infrastructure.DefaultOTelConfig()
	if cfg.Telemetry.ServiceName != "" {
		otelCfg.ServiceName = cfg.Telemetry.ServiceName
	}
	otelCfg.ServiceVersion = Version
	otelCfg.EnableTracing = cfg.Telemetry.TracingEnabled
	otelCfg.EnableMetrics = cfg.Telemetry.MetricsEnabled
	return otelCfg
}

// NewServices wires the readers, the importer and the services. The CLI uses
// it too, so both surfaces run the same pipeline.
func NewServices(cfg *config.Config, paths *config.Paths, providers *infrastructure.OTelProviders, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *ServiceContainer {
	registry := archive.NewRegistry(
		archive.NewGDXReader(cfg.Import.GDXDumpPath, nil, logger),
		archive.NewXLSXReader(logger),
	)

	importer := dataprocessing.NewImporter(registry, paths.EssentialOutputsFile, logger,
		dataprocessing.WithTracer(providers.Tracer),
		dataprocessing.WithMetrics(metrics),
	)

	discovery := files.NewDiscovery(paths.ResultsDir, registry.Extensions()...)
	csv := exporter.NewCSVWriter(paths, logger)
	workbook := exporter.NewWorkbookWriter(logger)

	return &ServiceContainer{
		Registry:  registry,
		Importer:  importer,
		Discovery: discovery,
		CSV:       csv,
		Workbook:  workbook,
		Scenario: services.NewScenarioService(discovery, importer, csv, workbook, logger,
			services.WithImportTimeout(cfg.Import.Timeout),
			services.WithScenarioMetrics(metrics),
		),
		Health: services.NewHealthService(Version, BuildTime, paths, cfg.Import.GDXDumpPath, logger),
	}
}

// setupRouter follows the ordering RequestID → RealIP → OTel → Logger →
// Recoverer. Health checks and /metrics skip the rate limiter.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/healthz", health.HealthCheck)
	r.Get("/readyz", health.ReadinessCheck)
	r.Get("/livez", health.LivenessCheck)
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	scenarios := handlers.NewScenarioHandler(a.Services.Scenario, a.Logger, a.errorHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.StripSlashes)
		r.Use(customMiddleware.CORS(a.corsConfig()))
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Compress(5))

		r.Mount("/scenarios", scenarios.Routes())
		r.Get("/charts", scenarios.ChartNames)
		r.Get("/version", health.Version)
	})

	a.Router = r
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		Logger:         a.Logger,
	}
	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
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

// Run listens on the configured port and serves until ctx is cancelled
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails, then shuts
// down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Server listening",
			slog.String("address", ln.Addr().String()),
			slog.String("results_dir", a.Paths.ResultsDir))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
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

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// StartupCheck logs readiness problems without failing startup, so the
// server still answers /readyz while gdxdump or the allow-list is missing
func (a *Application) StartupCheck(ctx context.Context) {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status == "ready" {
		return
	}
	for name, s := range status.Services {
		if s.Status != "ready" {
			a.Logger.WarnContext(ctx, "Startup check failed",
				slog.String("dependency", name),
				slog.String("message", s.Message))
		}
	}
}
