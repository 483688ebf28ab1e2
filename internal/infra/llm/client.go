package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultAttemptTimeout bounds a single upstream attempt, shape fallback included.
const DefaultAttemptTimeout = 20 * time.Second

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithAttemptTimeout overrides DefaultAttemptTimeout.
func WithAttemptTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

// WithSleeper replaces the backoff sleep; tests pass a no-op.
func WithSleeper(s Sleeper) ClientOption {
	return func(c *Client) { c.sleep = s }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// Client turns a prompt into reply text. It builds its Provider lazily and
// caches it, bounds every attempt with a timeout, falls back across request
// shapes, and retries transient failures.
//
// Client is safe for concurrent use.
type Client struct {
	factory Factory

	mu       sync.Mutex
	provider Provider

	timeout time.Duration
	retry   RetryPolicy
	sleep   Sleeper
	logger  *slog.Logger
}

// NewClient creates a Client. The factory is not called until the first Generate.
func NewClient(factory Factory, opts ...ClientOption) *Client {
	c := &Client{
		factory: factory,
		timeout: DefaultAttemptTimeout,
		retry:   DefaultRetryPolicy(),
		sleep:   SleepContext,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns the trimmed reply text for prompt. Failures are returned
// as *Error whenever the cause could be classified.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	p, err := c.resolve()
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		text, err := c.attempt(ctx, p, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt >= c.retry.MaxRetries || !IsTransient(err) || ctx.Err() != nil {
			break
		}
		delay := c.retry.Delay(attempt + 1)
		c.logger.Warn("upstream attempt failed, retrying",
			"provider", p.ModelInfo().Provider,
			"attempt", attempt+1,
			"kind", string(KindOf(err)),
			"delay_ms", delay.Milliseconds(),
		)
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			break
		}
	}
	return "", lastErr
}

// Provider returns the cached provider, building it if needed.
func (c *Client) Provider() (Provider, error) { return c.resolve() }

func (c *Client) resolve() (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider != nil {
		return c.provider, nil
	}
	if c.factory == nil {
		return nil, &Error{Kind: KindConfig, Err: ErrUnknownProvider}
	}
	p, err := c.factory()
	if err != nil {
		return nil, err
	}
	c.provider = p
	return p, nil
}

// attempt runs one timed attempt: every shape in order until one yields text
// or the attempt's deadline passes.
func (c *Client) attempt(ctx context.Context, p Provider, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var primary, last error
	for i, shape := range p.Shapes() {
		text, err := shape.Generate(ctx, prompt)
		if err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text, nil
			}
			err = &Error{Kind: KindEmpty, Provider: p.ModelInfo().Provider, Err: ErrEmptyResponse}
		}
		err = asTimeout(ctx, p, err)
		if i == 0 {
			primary = err
		}
		last = err

		if ctx.Err() != nil {
			break
		}
		c.logger.Debug("upstream shape failed",
			"provider", p.ModelInfo().Provider,
			"shape", shape.Name,
			"kind", string(KindOf(err)),
		)
	}
	if primary == nil {
		return "", &Error{Kind: KindEmpty, Provider: p.ModelInfo().Provider, Err: ErrEmptyResponse}
	}
	return "", preferClassified(primary, last)
}

// asTimeout reclassifies deadline expiry of the attempt context as KindTimeout.
func asTimeout(ctx context.Context, p Provider, err error) error {
	if KindOf(err) == KindTimeout {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Provider: p.ModelInfo().Provider, Err: err}
	}
	return err
}

// preferClassified keeps the primary shape's error unless it says less than
// the alternate's.
func preferClassified(primary, alternate error) error {
	switch KindOf(primary) {
	case KindUnknown, KindEmpty:
		if k := KindOf(alternate); k != KindUnknown && k != KindEmpty {
			return alternate
		}
	}
	return primary
}
