// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrGeneration, ErrStore, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

// QuoteGenerator produces quote text from a language model.
//
// Key considerations:
//   - One call per invocation, no streaming
//   - Handle timeouts via context deadline
//   - Map every provider failure to domain.GenerationError
type QuoteGenerator interface {
	// GenerateQuoteText asks the model for one quote. The returned text is
	// trimmed of surrounding whitespace and may be empty.
	// Returns domain.ErrGeneration on transport, provider, or rate-limit failure.
	GenerateQuoteText(ctx context.Context, theme, tone, audience string) (string, error)
}

// QuoteStore persists quote records keyed by calendar date.
//
// There is a single writer. Readers may run concurrently with it and must
// never see a partially written per-day log.
type QuoteStore interface {
	// Append adds rec to the log of its date and makes it the latest record.
	// Returns domain.ErrStore if any step fails; later steps are not attempted.
	Append(ctx context.Context, rec domain.QuoteRecord) error

	// Latest returns the most recently appended record, or nil if none exists.
	Latest(ctx context.Context) (*domain.QuoteRecord, error)

	// ByDate returns the log for a date key in append order. An unknown or
	// malformed key yields an empty slice, not an error.
	ByDate(ctx context.Context, date string) ([]domain.QuoteRecord, error)

	// ListDates returns every stored date key, most recent first.
	ListDates(ctx context.Context) ([]string, error)
}

// Clock supplies the current time. Services take it as a dependency so tests
// can pin the hour and date.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
