package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Generation outcomes used as the "result" label.
const (
	ResultSuccess         = "success"
	ResultGenerationError = "generation_error"
	ResultStoreError      = "store_error"
	ResultError           = "error"
)

// Prometheus collectors are registered once per process on the default
// registry, which /-/metrics serves.
var (
	quotesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_generated_total",
		Help: "Hourly generation runs by result.",
	}, []string{"result"})

	lastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quotes_last_success_timestamp_seconds",
		Help: "Unix time of the last quote that was generated and stored.",
	})
)

// GenerationMetrics records hourly generation runs.
type GenerationMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// NewGenerationMetrics creates the OpenTelemetry instruments for generation runs.
func NewGenerationMetrics() (*GenerationMetrics, error) {
	meter := otel.Meter(instrumentationName)

	runs, err := meter.Int64Counter(
		"quotes.generation.runs",
		metric.WithDescription("Hourly generation runs by result"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"quotes.generation.duration",
		metric.WithDescription("Duration of an hourly generation run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{runs: runs, duration: duration}, nil
}

// Record reports one run. A nil receiver only updates the Prometheus collectors.
func (m *GenerationMetrics) Record(ctx context.Context, result string, elapsed time.Duration, at time.Time) {
	quotesGenerated.WithLabelValues(result).Inc()

	if result == ResultSuccess {
		lastSuccess.Set(float64(at.Unix()))
	}

	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("result", result))
	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
