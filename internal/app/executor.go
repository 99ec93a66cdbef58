package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Step names one stage of a Pipeline.
type Step string

// Pipeline stages, in execution order.
const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
	StepArchive  Step = "archive"
)

// StepError records the stage a pipeline stopped at.
type StepError struct {
	Step  Step
	Cause error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StepError) Unwrap() error {
	return e.Cause
}

// FailedStep extracts the stage from a pipeline error.
func FailedStep(err error) (Step, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}

	return "", false
}

// Pipeline is a write operation that calls an unreliable dependency and then
// persists the outcome:
//
//	Validate → Perform → Verify → Archive
//
// Archive runs only when every earlier stage succeeded, so a failed Perform
// never leaves partial state behind. Nil stages are skipped.
type Pipeline[I, P, V any] struct {
	// Name identifies the pipeline in logs.
	Name string

	// Validate checks inputs before anything external is called.
	Validate func(ctx context.Context, in I) error

	// Perform calls the dependency.
	Perform func(ctx context.Context, in I) (P, error)

	// Verify turns the raw result into the value to persist.
	Verify func(ctx context.Context, in I, performed P) (V, error)

	// Archive persists the verified value.
	Archive func(ctx context.Context, in I, verified V) error
}

// Executor runs pipelines with step-level logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Execute runs p for in and returns the verified value.
func Execute[I, P, V any](ctx context.Context, exec *Executor, p Pipeline[I, P, V], in I) (V, error) {
	var zero V

	logger := exec.logger.With(slog.String("operation", p.Name))
	start := time.Now()

	fail := func(step Step, err error) (V, error) {
		logger.WarnContext(ctx, "pipeline stopped",
			slog.String("step", string(step)),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))

		return zero, &StepError{Step: step, Cause: err}
	}

	if p.Validate != nil {
		if err := p.Validate(ctx, in); err != nil {
			return fail(StepValidate, err)
		}
	}

	var performed P
	if p.Perform != nil {
		logger.DebugContext(ctx, "performing operation")

		var err error
		if performed, err = p.Perform(ctx, in); err != nil {
			return fail(StepPerform, err)
		}
	}

	var verified V
	if p.Verify != nil {
		var err error
		if verified, err = p.Verify(ctx, in, performed); err != nil {
			return fail(StepVerify, err)
		}
	}

	if p.Archive != nil {
		logger.DebugContext(ctx, "archiving result")

		if err := p.Archive(ctx, in, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	logger.DebugContext(ctx, "pipeline completed", slog.Duration("duration", time.Since(start)))

	return verified, nil
}
