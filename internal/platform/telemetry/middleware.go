package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jsamuelsen/hourly-quotes/telemetry"

// HeaderTraceID echoes the request's trace ID so a reader of the API or a
// page can quote it in a bug report.
const HeaderTraceID = "X-Trace-ID"

// httpMetrics holds the HTTP server instruments.
type httpMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newHTTPMetrics() (*httpMetrics, error) {
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{duration: duration, total: total, active: active}, nil
}

// Middleware returns the tracing and metrics handlers, in that order.
// Routes are labelled by their template (/api/quotes/:date), never by the
// raw path, so metric cardinality stays bounded.
func Middleware(serviceName string) []gin.HandlerFunc {
	metrics, err := newHTTPMetrics()
	if err != nil {
		otel.Handle(err)
	}

	record := func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		base := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}

		if metrics != nil {
			metrics.active.Add(ctx, 1, metric.WithAttributes(base...))
			defer metrics.active.Add(ctx, -1, metric.WithAttributes(base...))
		}

		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		c.Next()

		if metrics != nil {
			attrs := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
			metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			metrics.total.Add(ctx, 1, attrs)
		}
	}

	return []gin.HandlerFunc{otelgin.Middleware(serviceName), record}
}
