package llm

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds how often and how patiently a failed generation is retried.
type RetryPolicy struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxJitter  time.Duration `yaml:"max_jitter"`
}

// DefaultRetryPolicy allows two retries at 300ms·attempt plus up to 400ms jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  300 * time.Millisecond,
		MaxJitter:  400 * time.Millisecond,
	}
}

// Delay returns the pause before retry number attempt (1-based):
// BaseDelay·attempt plus a uniform jitter in [0, MaxJitter).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := p.BaseDelay * time.Duration(attempt)
	if p.MaxJitter > 0 {
		d += time.Duration(rand.Int64N(int64(p.MaxJitter)))
	}
	return d
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
