package bootstrap

import (
	"testing"
	"time"

	"legal-chatbot-be/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestSessionLockLease(t *testing.T) {
	tests := []struct {
		name       string
		lease      time.Duration
		llmTimeout time.Duration
		want       time.Duration
	}{
		{name: "default lease covers default timeout", lease: 2 * time.Minute, llmTimeout: 60 * time.Second, want: 2 * time.Minute},
		{name: "long model timeout raises lease", lease: 2 * time.Minute, llmTimeout: 5 * time.Minute, want: 5*time.Minute + lockLeaseMargin},
		{name: "lease equal to timeout still gets margin", lease: time.Minute, llmTimeout: time.Minute, want: time.Minute + lockLeaseMargin},
		{name: "zero lease", lease: 0, llmTimeout: 10 * time.Second, want: 10*time.Second + lockLeaseMargin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Ai:   config.AIConfig{LLMTimeout: tt.llmTimeout},
				Chat: config.ChatConfig{LockLease: tt.lease},
			}
			assert.Equal(t, tt.want, SessionLockLease(cfg))
		})
	}
}
