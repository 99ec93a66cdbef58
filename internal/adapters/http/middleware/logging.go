package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/hourly-quotes/internal/platform/logging"
)

// opsPrefix is where probes and metrics live. Those requests are not logged.
const opsPrefix = "/-/"

// Logging logs one line per completed request at a level chosen by status:
// INFO below 400, WARN for 4xx, ERROR for 5xx. Paths under /-/ and any
// extra skipPaths are not logged.
//
// The context logger already carries request_id and correlation_id when
// the ID middleware runs first; logger is used when it does not.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok || strings.HasPrefix(path, opsPrefix) {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		ctx := c.Request.Context()

		reqLogger := logging.FromContext(ctx)
		if c.GetString(ContextKeyRequestID) == "" && logger != nil {
			reqLogger = logger
		}

		status := c.Writer.Status()
		latency := time.Since(start)

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}

		reqLogger.LogAttrs(ctx, level, "request completed", attrs...)
	}
}
