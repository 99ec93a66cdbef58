// Package clients provides the instrumented HTTP client that provider SDKs
// send their requests through.
package clients

import "errors"

// Transport-level failures. Adapters translate them into domain errors, as
// acl.MapProviderError does for the quote generator.
var (
	// ErrCircuitOpen means the breaker rejected the call without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once the retry budget is
	// spent. With the default budget of one attempt it wraps the only failure.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
