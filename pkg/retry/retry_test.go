package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
	}
}

func TestDo_Attempts(t *testing.T) {
	transient := errors.New("unavailable")
	permanent := errors.New("bad request")

	tests := []struct {
		name      string
		failures  []error
		retryable func(error) bool
		wantErr   error
		wantCalls int
	}{
		{name: "first try", wantCalls: 1},
		{name: "recovers", failures: []error{transient, transient}, wantCalls: 3},
		{name: "gives up", failures: []error{transient, transient, transient, transient}, wantErr: transient, wantCalls: 3},
		{
			name:      "non retryable stops",
			failures:  []error{permanent, transient},
			retryable: func(err error) bool { return errors.Is(err, transient) },
			wantErr:   permanent,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetrier(fastConfig(2))
			if tt.retryable != nil {
				r = r.WithRetryable(tt.retryable)
			}

			calls := 0
			err := r.Do(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestDo_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewDefaultRetrier()

	err := r.Do(ctx, func() error {
		cancel()
		return errors.New("failed after cancel")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetryable_CopiesConfig(t *testing.T) {
	base := NewDefaultRetrier()
	narrowed := base.WithRetryable(func(error) bool { return false })

	assert.Nil(t, base.config.Retryable)
	assert.NotNil(t, narrowed.config.Retryable)
}

func TestDelay_Backoff(t *testing.T) {
	r := NewRetrier(&Config{
		BackoffFactor: 2,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
	})

	assert.Equal(t, 100*time.Millisecond, r.delay(0))
	assert.Equal(t, 200*time.Millisecond, r.delay(1))
	assert.Equal(t, 800*time.Millisecond, r.delay(3))
	assert.Equal(t, time.Second, r.delay(4))
	assert.Equal(t, time.Second, r.delay(40))
}

func TestDelay_JitterBounded(t *testing.T) {
	r := NewRetrier(&Config{
		BackoffFactor: 1,
		InitialDelay:  10 * time.Millisecond,
		Jitter:        5 * time.Millisecond,
	})
	for i := 0; i < 50; i++ {
		d := r.delay(i)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 15*time.Millisecond)
	}
}

func TestValue(t *testing.T) {
	calls := 0
	got, err := Value(context.Background(), NewRetrier(fastConfig(3)), func() (string, error) {
		calls++
		if calls == 1 {
			return "partial", errors.New("timeout")
		}
		return "standalone question", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "standalone question", got)
	assert.Equal(t, 2, calls)

	_, err = Value(context.Background(), NewRetrier(fastConfig(0)), func() (int, error) {
		return 7, errors.New("down")
	})
	assert.EqualError(t, err, "down")
}
