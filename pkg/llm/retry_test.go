package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	errs  []error
	calls int
}

func (s *scriptedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return s.Chat(ctx, nil, options...)
}

func TestNewRetryingProvider_ZeroRetriesReturnsInner(t *testing.T) {
	inner := &scriptedProvider{}
	assert.Same(t, inner, NewRetryingProvider(inner, 0, time.Millisecond))
}

func TestRetryingProvider_Chat(t *testing.T) {
	unavailable := &StatusError{Provider: "test", StatusCode: 503}
	badRequest := &StatusError{Provider: "test", StatusCode: 400}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{name: "succeeds first try", wantCalls: 1},
		{name: "recovers after 5xx", errs: []error{unavailable, unavailable}, wantCalls: 3},
		{name: "gives up after max retries", errs: []error{unavailable, unavailable, unavailable, unavailable}, wantCalls: 3, wantErr: unavailable},
		{name: "does not retry 4xx", errs: []error{badRequest}, wantCalls: 1, wantErr: badRequest},
		{name: "does not retry deadline", errs: []error{context.DeadlineExceeded}, wantCalls: 1, wantErr: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &scriptedProvider{errs: tt.errs}
			p := NewRetryingProvider(inner, 2, time.Millisecond)

			out, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
			assert.Equal(t, tt.wantCalls, inner.calls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Empty(t, out)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
		})
	}
}

func TestRetryingProvider_StopsOnCancelledContext(t *testing.T) {
	inner := &scriptedProvider{errs: []error{errors.New("connection reset"), nil}}
	p := NewRetryingProvider(inner, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Chat(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
