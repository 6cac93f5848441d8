package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/sandevgo/docchat/pkg/log"
)

type Operation = func() error

// Config describes exponential backoff with jitter. Attempts made are
// MaxRetries+1 at most.
type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
	// Retryable reports whether err is worth another attempt. Nil retries every error.
	Retryable func(err error) bool
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    5,
		BackoffFactor: 2,
		InitialDelay:  300 * time.Millisecond,
		MaxDelay:      20 * time.Second,
		Jitter:        50 * time.Millisecond,
	}
}

type Retrier struct {
	config Config
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{config: *config}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// WithRetryable returns a copy of the retrier that only retries errors accepted by fn.
func (r *Retrier) WithRetryable(fn func(err error) bool) *Retrier {
	cfg := r.config
	cfg.Retryable = fn
	return &Retrier{config: cfg}
}

// Do runs op until it succeeds, returns a non-retryable error or runs out of
// attempts. The last error is returned as is. Cancelling ctx while waiting
// returns ctx.Err().
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	cfg := r.config
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if attempt >= cfg.MaxRetries || (cfg.Retryable != nil && !cfg.Retryable(err)) {
			return err
		}

		wait := r.delay(attempt)
		log.FromCtx(ctx).Debug().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// delay is the wait after the given zero-based failed attempt.
func (r *Retrier) delay(attempt int) time.Duration {
	cfg := r.config
	d := float64(cfg.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= cfg.BackoffFactor
		if cfg.MaxDelay > 0 && d >= float64(cfg.MaxDelay) {
			break
		}
	}

	wait := time.Duration(d)
	if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
		wait = cfg.MaxDelay
	}
	if cfg.Jitter > 0 {
		wait += rand.N(cfg.Jitter)
	}
	return wait
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, r *Retrier, op func() (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
