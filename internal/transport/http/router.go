package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"leadlag/internal/config"
	"leadlag/internal/diagnostics"
	apierrors "leadlag/internal/errors"
	"leadlag/internal/infrastructure"
	custommw "leadlag/internal/middleware"
	"leadlag/internal/websocket"
)

// RouterDeps carries everything the router needs. Providers may be nil when
// observability is disabled.
type RouterDeps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Hub       *websocket.Hub
	Emitter   diagnostics.Emitter
	Providers *infrastructure.OTelProviders
	Version   string
}

// NewRouter assembles the service's middleware chain and routes.
func NewRouter(deps RouterDeps) (chi.Router, error) {
	cfg := deps.Config
	logger := deps.Logger

	errorHandler := apierrors.NewErrorHandler(logger, cfg.Logging.Development)

	var metrics *infrastructure.EngineMetrics
	var otelMW *custommw.OTelMiddleware
	if deps.Providers != nil && deps.Providers.Meter != nil {
		var err error
		otelMW, err = custommw.NewOTelMiddleware(deps.Providers)
		if err != nil {
			return nil, err
		}
		metrics = otelMW.Metrics()
	}

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	if otelMW != nil {
		r.Use(otelMW.Handler)
	}

	if cfg.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: cfg.Security.AllowedOrigins,
			Logger:         logger,
		}))
	}

	if cfg.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := NewHealthHandler(logger, deps.Version)
	filesHandler := NewFilesHandler(logger, errorHandler, cfg.Paths.DataDir)
	analysisHandler := NewAnalysisHandler(cfg, logger, errorHandler, deps.Emitter, metrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(cfg.Server.RequestTimeout, logger))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Post("/files/upload", filesHandler.Upload)
		r.Get("/files/sheets", filesHandler.Sheets)
		r.Get("/files/columns", filesHandler.Columns)

		r.Post("/analyze", analysisHandler.Analyze)
	})

	if deps.Hub != nil {
		wsHandler := NewWSHandler(deps.Hub, cfg, logger)
		r.Get("/ws", wsHandler.Serve)
	}

	if deps.Providers != nil && deps.Providers.PrometheusHTTP != nil {
		r.Handle("/metrics", deps.Providers.PrometheusHTTP)
	}

	if cfg.Paths.WebDir != "" {
		fs := http.FileServer(http.Dir(cfg.Paths.WebDir))
		r.Handle("/*", fs)
	}

	return r, nil
}
