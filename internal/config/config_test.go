package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("RETRIEVAL_TOP_K", "")
	t.Setenv("CHAT_HISTORY_LIMIT", "")
	t.Setenv("VECTOR_INDEX", "pgvector")

	cfg := Load()

	assert.Equal(t, 60*time.Second, cfg.Ai.LLMTimeout)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, 0, cfg.Chat.HistoryLimit)
	assert.Equal(t, "pgvector", cfg.Retrieval.VectorIndex)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "90")
	t.Setenv("LLM_TEMPERATURE", "0.1")
	t.Setenv("RETRIEVAL_TOP_K", "5")
	t.Setenv("VECTOR_INDEX", "Qdrant")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("JWT_TTL", "2h")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.Ai.LLMTimeout)
	assert.InDelta(t, 0.1, cfg.Ai.LLMTemperature, 1e-9)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "qdrant", cfg.Retrieval.VectorIndex)
	assert.True(t, cfg.App.OtelEnabled)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JwtTTL)
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_TIMEOUT", time.Minute))
}
