package acl

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

// Reasons attached to GenerationError. They are stable strings, safe to log
// and to show in API error details.
const (
	ReasonCircuitOpen      = "circuit breaker open"
	ReasonRetriesExhausted = "max retries exceeded"
	ReasonTimeout          = "request timed out"
	ReasonCanceled         = "request canceled"
	ReasonRateLimited      = "rate limit exceeded"
	ReasonUnauthorized     = "credentials rejected"
	ReasonUnavailable      = "provider unavailable"
	ReasonNoChoices        = "response contained no choices"
)

// MapProviderError translates any error from the SDK or the HTTP client into
// a domain.GenerationError. A nil error maps to nil.
//
// Client-level errors are checked first, then the SDK's typed errors
// (APIError for error bodies, RequestError for bodies it could not parse).
func MapProviderError(err error, provider string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewGenerationError(provider, ReasonTimeout, err)
	case errors.Is(err, context.Canceled):
		return domain.NewGenerationError(provider, ReasonCanceled, err)
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewGenerationError(provider, ReasonCircuitOpen, err)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewGenerationError(provider, ReasonRetriesExhausted, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewGenerationError(provider, reasonForStatus(apiErr.HTTPStatusCode, apiErr.Message), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewGenerationError(provider, reasonForStatus(reqErr.HTTPStatusCode, ""), err)
	}

	return domain.NewGenerationError(provider, "", err)
}

// reasonForStatus picks a reason for an HTTP status returned by the provider.
func reasonForStatus(status int, message string) string {
	switch {
	case status == http.StatusTooManyRequests:
		return ReasonRateLimited
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ReasonUnauthorized
	case status >= http.StatusInternalServerError:
		return ReasonUnavailable
	case message != "":
		return fmt.Sprintf("HTTP %d: %s", status, message)
	default:
		return fmt.Sprintf("HTTP %d", status)
	}
}
