package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Name() string                  { return f.name }
func (f fakeChecker) Check(_ context.Context) error { return f.err }

type waitingChecker struct {
	name string
}

func (w waitingChecker) Name() string { return w.name }

func (w waitingChecker) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func TestRegister(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(fakeChecker{name: "store"}))
	require.NoError(t, registry.Register(fakeChecker{name: "generator"}))

	err := registry.Register(fakeChecker{name: "store"})

	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "store")
	assert.Len(t, registry.checkers, 2)
}

func TestCheckAll(t *testing.T) {
	tests := []struct {
		name     string
		checkers []HealthChecker
		want     HealthStatus
		messages map[string]string
	}{
		{
			name: "no checkers",
			want: HealthStatusHealthy,
		},
		{
			name:     "all healthy",
			checkers: []HealthChecker{fakeChecker{name: "store"}, fakeChecker{name: "generator"}},
			want:     HealthStatusHealthy,
			messages: map[string]string{"store": "", "generator": ""},
		},
		{
			name: "one unhealthy",
			checkers: []HealthChecker{
				fakeChecker{name: "store"},
				fakeChecker{name: "generator", err: errors.New("api key not configured")},
			},
			want:     HealthStatusUnhealthy,
			messages: map[string]string{"store": "", "generator": "api key not configured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			require.NotNil(t, result)
			assert.Equal(t, tt.want, result.Status)
			assert.Len(t, result.Checks, len(tt.checkers))
			assert.False(t, result.Timestamp.IsZero())

			for name, msg := range tt.messages {
				require.Contains(t, result.Checks, name)
				assert.Equal(t, msg, result.Checks[name].Message)
			}
		})
	}
}

func TestCheckAll_UsesClock(t *testing.T) {
	at := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	registry := NewHealthRegistry()
	registry.clock = ClockFunc(func() time.Time { return at })

	assert.Equal(t, at, registry.CheckAll(context.Background()).Timestamp)
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(waitingChecker{name: "store"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["store"].Message, "context canceled")
}

func TestClockFunc(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, at, ClockFunc(func() time.Time { return at }).Now())
	assert.WithinDuration(t, time.Now(), SystemClock.Now(), time.Second)
}
