package acl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/hourly-quotes/internal/domain"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/config"
)

const testAPIKey = "sk-test-0123456789abcdef"

func testOpenAIConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:      testAPIKey,
		BaseURL:     baseURL,
		Name:        "openai",
		Model:       "gpt-3.5-turbo",
		MaxTokens:   100,
		Temperature: 0.9,
		Timeout:     2 * time.Second,
	}
}

func newTestClient(t *testing.T, maxFailures int) *clients.Client {
	t.Helper()

	client, err := clients.New(&clients.Config{
		ServiceName: "openai",
		Timeout:     5 * time.Second,
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   maxFailures,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return client
}

// setupGenerator creates an OpenAIGenerator against a test server mounted at /v1.
func setupGenerator(t *testing.T, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gen, err := NewOpenAIGenerator(OpenAIGeneratorConfig{
		Client: newTestClient(t, 10),
		OpenAI: testOpenAIConfig(server.URL + "/v1"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return gen
}

func writeCompletion(t *testing.T, w http.ResponseWriter, choices ...string) {
	t.Helper()

	resp := openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  "gpt-3.5-turbo",
	}
	for i, content := range choices {
		resp.Choices = append(resp.Choices, openai.ChatCompletionChoice{
			Index:        i,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"message":"` + message + `","type":"test","code":"test"}}`))
}

func TestNewOpenAIGenerator_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewOpenAIGenerator(OpenAIGeneratorConfig{OpenAI: testOpenAIConfig("http://localhost")})
	})
}

func TestNewOpenAIGenerator_RequiresAPIKey(t *testing.T) {
	cfg := testOpenAIConfig("http://localhost")
	cfg.APIKey = "  "

	gen, err := NewOpenAIGenerator(OpenAIGeneratorConfig{
		Client: newTestClient(t, 5),
		OpenAI: cfg,
	})

	require.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.Nil(t, gen)
}

func TestNewOpenAIGenerator_Defaults(t *testing.T) {
	cfg := testOpenAIConfig("http://localhost")
	cfg.Name = ""

	gen, err := NewOpenAIGenerator(OpenAIGeneratorConfig{
		Client: newTestClient(t, 5),
		OpenAI: cfg,
	})

	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Name())
	assert.NotNil(t, gen.logger)
}

func TestGenerateQuoteText_Success(t *testing.T) {
	var got openai.ChatCompletionRequest

	gen := setupGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		writeCompletion(t, w, "  Courage grows where comfort ends.\n")
	})

	text, err := gen.GenerateQuoteText(context.Background(), "courage", "motivational", "professionals")

	require.NoError(t, err)
	assert.Equal(t, "Courage grows where comfort ends.", text)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	assert.InDelta(t, 0.9, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, systemPrompt, got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Contains(t, got.Messages[1].Content, `about "courage"`)
	assert.Contains(t, got.Messages[1].Content, "with a motivational tone")
	assert.Contains(t, got.Messages[1].Content, "for professionals")
	assert.Contains(t, got.Messages[1].Content, "under 200 characters")
}

func TestGenerateQuoteText_EmptyTextIsNotAnError(t *testing.T) {
	gen := setupGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(t, w, "   ")
	})

	text, err := gen.GenerateQuoteText(context.Background(), "life", "calm", "general")

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerateQuoteText_LongTextIsNotTruncated(t *testing.T) {
	long := make([]byte, 450)
	for i := range long {
		long[i] = 'a'
	}

	gen := setupGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(t, w, string(long))
	})

	text, err := gen.GenerateQuoteText(context.Background(), "life", "calm", "general")

	require.NoError(t, err)
	assert.Len(t, text, 450)
}

func TestGenerateQuoteText_NoChoices(t *testing.T) {
	gen := setupGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(t, w)
	})

	_, err := gen.GenerateQuoteText(context.Background(), "life", "calm", "general")

	require.Error(t, err)
	assert.True(t, domain.IsGeneration(err))
	assert.Contains(t, err.Error(), ReasonNoChoices)
}

func TestGenerateQuoteText_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, reason: ReasonRateLimited},
		{name: "bad key", status: http.StatusUnauthorized, reason: ReasonUnauthorized},
		{name: "bad request", status: http.StatusBadRequest, reason: "HTTP 400: model not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := setupGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
				writeAPIError(w, tt.status, "model not found")
			})

			_, err := gen.GenerateQuoteText(context.Background(), "life", "calm", "general")

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGeneration)

			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, "openai", genErr.Provider)
			assert.Equal(t, tt.reason, genErr.Reason)
		})
	}
}

func TestGenerateQuoteText_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	gen := setupGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := gen.GenerateQuoteText(context.Background(), "life", "calm", "general")

	require.Error(t, err)
	assert.True(t, domain.IsGeneration(err))
	assert.ErrorIs(t, err, clients.ErrMaxRetriesExceeded)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateQuoteText_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	cfg := testOpenAIConfig(server.URL + "/v1")
	cfg.Timeout = 50 * time.Millisecond

	gen, err := NewOpenAIGenerator(OpenAIGeneratorConfig{Client: newTestClient(t, 10), OpenAI: cfg})
	require.NoError(t, err)

	_, err = gen.GenerateQuoteText(context.Background(), "life", "calm", "general")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateQuoteText_CircuitOpen(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, 1)
	gen, err := NewOpenAIGenerator(OpenAIGeneratorConfig{Client: client, OpenAI: testOpenAIConfig(server.URL + "/v1")})
	require.NoError(t, err)

	require.NoError(t, gen.Check(context.Background()))

	_, err = gen.GenerateQuoteText(context.Background(), "life", "calm", "general")
	require.Error(t, err)

	_, err = gen.GenerateQuoteText(context.Background(), "life", "calm", "general")
	require.Error(t, err)
	assert.ErrorIs(t, err, clients.ErrCircuitOpen)

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ReasonCircuitOpen, genErr.Reason)
	assert.Equal(t, int32(1), calls.Load())

	checkErr := gen.Check(context.Background())
	require.Error(t, checkErr)
	assert.True(t, domain.IsUnavailable(checkErr))
}
