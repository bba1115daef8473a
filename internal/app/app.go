package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"leadlag/internal/config"
	"leadlag/internal/diagnostics"
	"leadlag/internal/infrastructure"
	handlers "leadlag/internal/transport/http"
	ws "leadlag/internal/websocket"
)

const (
	// Version is the service version reported by /api/version.
	Version = "1.0.0"
	// AppName is the human-readable service name used in startup logs.
	AppName = "Lead/Lag Correlation Analyzer"
)

// Application is the main service container.
type Application struct {
	Config        *config.Config
	Router        chi.Router
	Server        *http.Server
	Hub           *ws.Hub
	Broadcaster   *diagnostics.Broadcaster
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication creates a new application instance.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	hub := ws.NewHub(logger)

	// Diagnostics go both to the structured log and to connected clients.
	broadcaster := diagnostics.NewBroadcaster(
		diagnostics.NewSlogEmitter(logger),
		hub,
	)

	router, err := handlers.NewRouter(handlers.RouterDeps{
		Config:    cfg,
		Logger:    logger,
		Hub:       hub,
		Emitter:   broadcaster,
		Providers: providers,
		Version:   Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Application{
		Config:        cfg,
		Router:        router,
		Server:        server,
		Hub:           hub,
		Broadcaster:   broadcaster,
		Logger:        logger,
		OTelProviders: providers,
	}, nil
}

// Run starts the server and blocks until shutdown completes.
func (a *Application) Run() error {
	a.Hub.Start()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown stops the server, the hub, and the telemetry providers.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
		return err
	}

	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return err
	}

	a.Logger.Info("shutdown complete")
	return nil
}
