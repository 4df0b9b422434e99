package llm

import (
	"context"
	"errors"
	"time"
)

// RetryingProvider wraps a provider with bounded exponential backoff.
// Only transport failures and retryable status codes are retried; a done
// context stops the loop immediately.
type RetryingProvider struct {
	inner      LLMProvider
	maxRetries int
	baseDelay  time.Duration
}

var _ LLMProvider = (*RetryingProvider)(nil)

// NewRetryingProvider returns p unchanged when maxRetries is zero or negative.
func NewRetryingProvider(p LLMProvider, maxRetries int, baseDelay time.Duration) LLMProvider {
	if maxRetries <= 0 {
		return p
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	return &RetryingProvider{inner: p, maxRetries: maxRetries, baseDelay: baseDelay}
}

func (r *RetryingProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		out, err := r.inner.Chat(ctx, history, options...)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", lastErr
		case <-time.After(r.delay(attempt)):
		}
	}
	return "", lastErr
}

func (r *RetryingProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return r.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
}

func (r *RetryingProvider) delay(attempt int) time.Duration {
	d := r.baseDelay << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}
