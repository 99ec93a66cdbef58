package clients

import (
	"github.com/sony/gobreaker"

	"github.com/jsamuelsen/hourly-quotes/internal/platform/config"
)

// State is the circuit breaker state of a downstream client.
type State = gobreaker.State

// Circuit breaker states.
const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// defaultMaxFailures applies when the configured trip threshold is unset.
const defaultMaxFailures = 5

// newCircuitBreaker builds a two-step breaker so the client can report the
// outcome after its own retry loop, instead of per attempt.
//
// State transitions:
//   - Closed → Open: after MaxFailures consecutive failed calls
//   - Open → HalfOpen: after Timeout
//   - HalfOpen → Closed: after HalfOpenLimit consecutive successes
//   - HalfOpen → Open: on any failure
func newCircuitBreaker(
	name string,
	cfg config.CircuitBreakerConfig,
	onStateChange func(from, to State),
) *gobreaker.TwoStepCircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(max(cfg.HalfOpenLimit, 1)), //nolint:gosec // bounded by config validation
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures) //nolint:gosec // positive
		},
	}

	if onStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			onStateChange(from, to)
		}
	}

	return gobreaker.NewTwoStepCircuitBreaker(settings)
}
