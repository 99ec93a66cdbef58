// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Two services live here:
//   - GenerationService writes: one quote per run, resolved from the hour.
//   - QueryService reads: latest, today, by date, and the history view.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen/hourly-quotes/internal/domain"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/telemetry"
	"github.com/jsamuelsen/hourly-quotes/internal/ports"
)

// GenerationServiceConfig contains the dependencies of the generation use case.
type GenerationServiceConfig struct {
	Generator ports.QuoteGenerator
	Store     ports.QuoteStore

	// Hourly is the validated parameter schedule.
	Hourly domain.HourlyConfig

	// Location is the zone whose wall clock picks the hour. Nil means time.Local.
	Location *time.Location

	// Clock defaults to ports.SystemClock.
	Clock ports.Clock

	// Metrics is optional.
	Metrics *telemetry.GenerationMetrics

	Logger *slog.Logger
}

// GenerationService produces and stores one quote per run.
type GenerationService struct {
	generator ports.QuoteGenerator
	store     ports.QuoteStore
	hourly    domain.HourlyConfig
	loc       *time.Location
	clock     ports.Clock
	metrics   *telemetry.GenerationMetrics
	exec      *Executor
	logger    *slog.Logger
}

// NewGenerationService creates the generation use case.
// Panics if Generator or Store is nil.
func NewGenerationService(cfg GenerationServiceConfig) *GenerationService {
	if cfg.Generator == nil || cfg.Store == nil {
		panic("GenerationService: Generator and Store are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "app.GenerationService"))

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock
	}

	return &GenerationService{
		generator: cfg.Generator,
		store:     cfg.Store,
		hourly:    cfg.Hourly,
		loc:       loc,
		clock:     clock,
		metrics:   cfg.Metrics,
		exec:      NewExecutor(logger),
		logger:    logger,
	}
}

// generationInput is fixed before the pipeline starts, so the hour used for
// the parameters and the record timestamp always agree.
type generationInput struct {
	at     time.Time
	params domain.HourlyParameters
}

// Run generates one quote for the current hour and appends it to the store.
//
// On a generation failure nothing is persisted and the error matches
// domain.ErrGeneration. On a store failure the error matches domain.ErrStore.
func (s *GenerationService) Run(ctx context.Context) (*domain.QuoteRecord, error) {
	start := time.Now()
	now := s.clock.Now().In(s.loc)

	in := generationInput{
		at:     now,
		params: domain.ResolveHourlyParameters(s.hourly, now),
	}

	s.logger.InfoContext(ctx, "generating quote",
		slog.Int("hour", in.params.Hour),
		slog.String("theme", in.params.Theme),
		slog.String("tone", in.params.Tone),
		slog.String("audience", in.params.Audience))

	rec, err := Execute(ctx, s.exec, Pipeline[generationInput, string, domain.QuoteRecord]{
		Name:     "generate_quote",
		Validate: s.validate,
		Perform: func(ctx context.Context, in generationInput) (string, error) {
			return s.generator.GenerateQuoteText(ctx, in.params.Theme, in.params.Tone, in.params.Audience)
		},
		Verify: func(_ context.Context, in generationInput, text string) (domain.QuoteRecord, error) {
			return domain.NewQuoteRecord(text, in.params, in.at), nil
		},
		Archive: func(ctx context.Context, _ generationInput, rec domain.QuoteRecord) error {
			return s.store.Append(ctx, rec)
		},
	}, in)

	s.metrics.Record(ctx, resultLabel(err), time.Since(start), now)

	if err != nil {
		step, _ := FailedStep(err)
		s.logger.ErrorContext(ctx, "quote generation failed",
			slog.String("step", string(step)),
			slog.Any("error", err))

		return nil, err
	}

	s.logger.InfoContext(ctx, "quote generated",
		slog.String("date", domain.DateKey(rec.GeneratedAt, s.loc)),
		slog.Int("length", len(rec.Text)))

	return &rec, nil
}

func (s *GenerationService) validate(ctx context.Context, in generationInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case in.params.Theme == "":
		return domain.NewValidationError("theme", "resolved to an empty value")
	case in.params.Tone == "":
		return domain.NewValidationError("tone", "resolved to an empty value")
	case in.params.Audience == "":
		return domain.NewValidationError("audience", "resolved to an empty value")
	}

	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return telemetry.ResultSuccess
	case domain.IsGeneration(err):
		return telemetry.ResultGenerationError
	case domain.IsStore(err):
		return telemetry.ResultStoreError
	default:
		return telemetry.ResultError
	}
}
