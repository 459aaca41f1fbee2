package embeddings

import (
	"context"
	"errors"
	"time"
)

// RetryConfig configures retry behavior for remote embedding calls.
type RetryConfig struct {
	MaxRetries   int           // Retry attempts after the initial one.
	InitialDelay time.Duration // Delay before the first retry.
	MaxDelay     time.Duration // Cap on the backoff delay.
	Multiplier   float64       // Exponential backoff multiplier.
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
	}
}

// RetryingEmbedder wraps an Embedder with bounded exponential backoff.
// Only provider-unavailable failures are retried; anything else (bad input,
// response shape mismatch) surfaces immediately.
type RetryingEmbedder struct {
	inner Embedder
	cfg   RetryConfig
}

// WithRetry wraps the given embedder with the retry policy.
func WithRetry(inner Embedder, cfg RetryConfig) *RetryingEmbedder {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 2.0
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 500 * time.Millisecond
	}
	return &RetryingEmbedder{inner: inner, cfg: cfg}
}

func (r *RetryingEmbedder) Name() string    { return r.inner.Name() }
func (r *RetryingEmbedder) Dimensions() int { return r.inner.Dimensions() }

func (r *RetryingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	delay := r.cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		vectors, err := r.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if !errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		lastErr = err

		if attempt >= r.cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * r.cfg.Multiplier)
		if r.cfg.MaxDelay > 0 && delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}

	return nil, lastErr
}
