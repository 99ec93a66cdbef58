package clients

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/middleware"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/config"
)

const completionBody = `{"model":"gpt-3.5-turbo","messages":[{"role":"user","content":"quote"}]}`

func defaultConfig() *Config {
	return &Config{
		ServiceName: "openai",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

// newPost builds a completion-style request against url.
func newPost(t *testing.T, ctx context.Context, url string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/chat/completions", strings.NewReader(completionBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return req
}

// closeBody is a test helper that closes the response body and fails the test on error.
func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestNew_RequiresServiceName(t *testing.T) {
	cfg := defaultConfig()
	cfg.ServiceName = ""

	_, err := New(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(&Config{ServiceName: "openai"})
	require.NoError(t, err)

	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, defaultMaxAttempts, client.cfg.Retry.MaxAttempts)

	transport, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, transportMaxIdleConns, transport.MaxIdleConns)
	assert.Equal(t, transportMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.Equal(t, transportIdleConnTimeout, transport.IdleConnTimeout)
}

func TestNew_TransportFromConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transport = config.TransportConfig{
		MaxIdleConns:        7,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     5 * time.Second,
	}

	client, err := New(cfg)
	require.NoError(t, err)

	transport, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, transport.MaxIdleConns)
	assert.Equal(t, 2, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 5*time.Second, transport.IdleConnTimeout)
}

func TestClient_HeaderPropagation(t *testing.T) {
	var receivedRequestID string
	var receivedCorrelationID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedRequestID = r.Header.Get(middleware.HeaderRequestID)
		receivedCorrelationID = r.Header.Get(middleware.HeaderCorrelationID)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(defaultConfig())
	require.NoError(t, err)

	ctx := context.Background()
	ctx = middleware.ContextWithRequestID(ctx, "test-request-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "test-correlation-456")

	resp, err := client.Do(ctx, newPost(t, ctx, server.URL))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "test-request-123", receivedRequestID)
	assert.Equal(t, "test-correlation-456", receivedCorrelationID)
}

func TestClient_RetryOnServerErrorReplaysBody(t *testing.T) {
	var attempts int32
	bodies := make(chan string, 3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies <- string(raw)

		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 3

	client, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.Do(ctx, newPost(t, ctx, server.URL))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))

	close(bodies)
	for body := range bodies {
		assert.JSONEq(t, completionBody, body, "every attempt must carry the full body")
	}
}

func TestClient_SingleAttemptByDefault(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Retry = config.RetryConfig{}

	client, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Do(ctx, newPost(t, ctx, server.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := New(defaultConfig())
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.Do(ctx, newPost(t, ctx, server.URL))
	require.NoError(t, err, "4xx responses are returned for the caller to decode")
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 2

	client, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Do(ctx, newPost(t, ctx, server.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.Retry.MaxAttempts = 1

	client, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Do(ctx, newPost(t, ctx, server.URL))
	require.Error(t, err)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(defaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Do(ctx, newPost(t, ctx, server.URL))
	require.Error(t, err)
}

func TestClient_Doer(t *testing.T) {
	var receivedRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedRequestID = r.Header.Get(middleware.HeaderRequestID)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(defaultConfig())
	require.NoError(t, err)

	ctx := middleware.ContextWithRequestID(context.Background(), "doer-req-1")

	resp, err := client.Doer().Do(newPost(t, ctx, server.URL))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "doer-req-1", receivedRequestID, "the request context should drive propagation")
}

func TestRewindBody(t *testing.T) {
	t.Run("no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		assert.NoError(t, rewindBody(req))
	})

	t.Run("replayable body", func(t *testing.T) {
		req := newPost(t, context.Background(), "http://example.test")
		_, _ = io.ReadAll(req.Body)

		require.NoError(t, rewindBody(req))

		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, completionBody, string(raw))
	})

	t.Run("streaming body", func(t *testing.T) {
		req := newPost(t, context.Background(), "http://example.test")
		req.GetBody = nil

		assert.Error(t, rewindBody(req))
	})
}

func TestCalculateBackoff(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retry.InitialInterval = 100 * time.Millisecond
	cfg.Retry.Multiplier = 2.0
	cfg.Retry.MaxInterval = 1 * time.Second

	client, err := New(cfg)
	require.NoError(t, err)

	backoff0 := client.calculateBackoff(0)
	backoff1 := client.calculateBackoff(1)
	backoff2 := client.calculateBackoff(2)

	assert.InDelta(t, 100*time.Millisecond, backoff0, float64(50*time.Millisecond))
	assert.InDelta(t, 200*time.Millisecond, backoff1, float64(100*time.Millisecond))
	assert.InDelta(t, 400*time.Millisecond, backoff2, float64(200*time.Millisecond))

	backoff10 := client.calculateBackoff(10)
	assert.LessOrEqual(t, backoff10, cfg.Retry.MaxInterval+cfg.Retry.MaxInterval/4)
}

// testNetError is a mock net.Error for testing.
type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"net op error connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryableError(tt.err)
			assert.Equal(t, tt.retryable, result)
		})
	}
}

func TestClient_CircuitBreakerShortCircuitsWhenOpen(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	client, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()

	// Trigger failures to open the circuit
	_, _ = client.Do(ctx, newPost(t, ctx, server.URL))
	_, _ = client.Do(ctx, newPost(t, ctx, server.URL))
	assert.Equal(t, StateOpen, client.CircuitState())

	callsBefore := atomic.LoadInt32(&calls)

	// This request should be short-circuited without hitting the server
	_, err = client.Do(ctx, newPost(t, ctx, server.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls), "request should be short-circuited when circuit is open")
}

func TestClient_RateLimitRetriesAfterHint(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.MaxInterval = 200 * time.Millisecond

	client, err := New(cfg)
	require.NoError(t, err)

	start := time.Now()
	resp, err := client.Do(context.Background(), newPost(t, context.Background(), srv.URL))

	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond, "waits for the capped hint")
}

func TestClient_RateLimitOnLastAttemptIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests"}}`))
	}))
	defer srv.Close()

	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 1

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), newPost(t, context.Background(), srv.URL))

	require.NoError(t, err)
	defer closeBody(t, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(body), "slow down")
	assert.Equal(t, StateClosed, client.CircuitState(), "rate limits do not trip the breaker")
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"120", 5 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}

			assert.Equal(t, tt.want, retryAfter(resp, 5*time.Second))
		})
	}
}
