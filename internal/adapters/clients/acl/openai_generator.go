package acl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/hourly-quotes/internal/domain"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/config"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/logging"
)

const systemPrompt = "You are a wise philosopher and wordsmith who creates original, meaningful quotes."

const userPromptFormat = "Generate an original, meaningful quote about %q with a %s tone for %s. " +
	"The quote should be inspirational, thought-provoking, and unique. " +
	"Return only the quote text without quotes marks or attribution. " +
	"Keep it concise (under 200 characters)."

// OpenAIGeneratorConfig contains configuration for the OpenAI generator.
type OpenAIGeneratorConfig struct {
	// Client carries requests to the provider. Its circuit breaker, tracing,
	// and retry policy apply to every completion call.
	Client *clients.Client

	// OpenAI holds the credential, endpoint, and sampling settings.
	OpenAI config.OpenAIConfig

	// Logger is the structured logger.
	Logger *slog.Logger
}

// OpenAIGenerator implements ports.QuoteGenerator using the chat completion API.
type OpenAIGenerator struct {
	api         *openai.Client
	client      *clients.Client
	name        string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

// NewOpenAIGenerator creates the generator adapter.
// Panics if Client is nil. Returns an error if the API key is missing.
func NewOpenAIGenerator(cfg OpenAIGeneratorConfig) (*OpenAIGenerator, error) {
	if cfg.Client == nil {
		panic("OpenAIGenerator: Client is required")
	}

	if err := cfg.OpenAI.RequireAPIKey(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	apiCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.OpenAI.BaseURL, "/")
	}
	apiCfg.HTTPClient = cfg.Client.Doer()

	name := cfg.OpenAI.Name
	if name == "" {
		name = "openai"
	}

	return &OpenAIGenerator{
		api:         openai.NewClientWithConfig(apiCfg),
		client:      cfg.Client,
		name:        name,
		model:       cfg.OpenAI.Model,
		maxTokens:   cfg.OpenAI.MaxTokens,
		temperature: cfg.OpenAI.Temperature,
		timeout:     cfg.OpenAI.Timeout,
		logger:      logger,
	}, nil
}

// GenerateQuoteText asks the model for a single quote.
// Implements ports.QuoteGenerator.
func (g *OpenAIGenerator) GenerateQuoteText(ctx context.Context, theme, tone, audience string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	logger := g.logger

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    buildMessages(theme, tone, audience),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	logger.Log(ctx, logging.LevelTrace, "sending completion request",
		slog.String("model", req.Model),
		slog.String("prompt", req.Messages[1].Content))
	logger.DebugContext(ctx, "generating quote",
		slog.String("theme", theme),
		slog.String("tone", tone),
		slog.String("audience", audience))

	resp, err := g.api.CreateChatCompletion(ctx, req)
	if err != nil {
		mapped := MapProviderError(err, g.name)
		logger.WarnContext(ctx, "quote generation failed", slog.Any("error", mapped))

		return "", mapped
	}

	if len(resp.Choices) == 0 {
		return "", domain.NewGenerationError(g.name, ReasonNoChoices, nil)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	logger.Log(ctx, logging.LevelTrace, "completion received",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.String("text", text))

	return text, nil
}

// buildMessages renders the system and user prompt. The length limit is an
// instruction to the model only; the reply is never truncated.
func buildMessages(theme, tone, audience string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPromptFormat, theme, tone, audience)},
	}
}

// Name returns the health check name for this generator.
// Implements ports.HealthChecker.
func (g *OpenAIGenerator) Name() string {
	return g.name
}

// Check reports the provider unhealthy while the circuit breaker is open.
// It does not call the API, so readiness probes cost no tokens.
// Implements ports.HealthChecker.
func (g *OpenAIGenerator) Check(_ context.Context) error {
	if state := g.client.CircuitState(); state == clients.StateOpen {
		return domain.NewUnavailableError(g.name, ReasonCircuitOpen)
	}

	return nil
}
