package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/logging"
)

// apiPrefix marks JSON routes. Everything else is a page.
const apiPrefix = "/api/"

// Recovery turns a panic into a 500. It logs the panic with its stack at
// ERROR. API routes get the JSON error envelope and pages get plain text.
// Apply it first so it covers every later handler.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			reqLogger := logging.FromContext(c.Request.Context())
			if c.GetString(ContextKeyRequestID) == "" && logger != nil {
				reqLogger = logger
			}

			traceID := dto.GetTraceID(c)

			reqLogger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("trace_id", traceID))

			if c.Writer.Written() {
				c.Abort()
				return
			}

			if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.ErrorCodeInternal, dto.InternalMessage).WithTraceID(traceID))

				return
			}

			c.String(http.StatusInternalServerError, "Something went wrong. Please try again later.")
			c.Abort()
		}()

		c.Next()
	}
}
