package http

import (
	"html/template"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/middleware"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds store reads of one API request or page.
const DefaultRequestTimeout = 10 * time.Second

// RouterConfig contains everything SetupRouter mounts. Nil handlers are skipped.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the otelgin tracer.
	ServiceName string

	// Templates are the parsed views; required when PageHandler is set.
	Templates *template.Template

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	PageHandler   *handlers.PageHandler

	// Timeout is the per-request deadline of the API and pages.
	Timeout time.Duration
}

// SetupRouter configures middleware and routes on engine.
// Middleware is applied in this order:
//  1. Recovery
//  2. Request ID and correlation ID
//  3. OpenTelemetry tracing and metrics
//  4. Logging (skips /-/)
//  5. Read cache, per request
//
// Routes:
//   - /-/      health, build info and metrics, no deadline
//   - /api/    JSON API
//   - /, /history  HTML views
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(
		middleware.Logging(cfg.Logger, "/favicon.ico"),
		middleware.ReadCache(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(engine)
	}

	if cfg.QuoteHandler != nil {
		api := engine.Group("/api", middleware.Timeout(cfg.Timeout))
		cfg.QuoteHandler.RegisterRoutes(api)
	}

	if cfg.PageHandler != nil && cfg.Templates != nil {
		engine.SetHTMLTemplate(cfg.Templates)

		cfg.PageHandler.RegisterRoutes(engine.Group("", middleware.Timeout(cfg.Timeout)))
	}
}
