// Package acl is the anti-corruption layer between the quote domain and the
// language-model provider.
//
// Provider DTOs (chat completion requests, choices, API errors) stay inside
// this package. Callers see only plain strings and domain errors:
//
//   - [OpenAIGenerator] implements ports.QuoteGenerator over go-openai,
//     sending requests through the instrumented [clients.Client].
//   - [MapProviderError] turns SDK, transport, and client-level failures
//     into [domain.GenerationError].
//
// Every failure surfaces as [domain.ErrGeneration]. The underlying cause stays
// in the chain, so errors.Is still matches [clients.ErrCircuitOpen] or
// [context.DeadlineExceeded].
package acl
