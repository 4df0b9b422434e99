package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"legal-chatbot-be/pkg/llm"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Chat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"Section 437 governs bail."},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3", time.Second)
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "When is bail granted?"},
	}, llm.WithTemperature(0.1))

	require.NoError(t, err)
	assert.Equal(t, "Section 437 governs bail.", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, llm.RoleUser, got.Messages[1].Role)
}

func TestOllamaProvider_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL, "llama3", time.Second).Generate(context.Background(), "Define tort")

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Define tort"}, got.Messages[0])
}

func TestOllamaProvider_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "status error", status: http.StatusServiceUnavailable, body: `model is loading`, wantStatus: http.StatusServiceUnavailable},
		{name: "error field", status: http.StatusOK, body: `{"error":"model 'llama3' not found"}`, wantMsg: "model 'llama3' not found"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantMsg: "unmarshal response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "llama3", time.Second).
				Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})

			require.Error(t, err)
			if tt.wantStatus != 0 {
				var se *llm.StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStatus, se.StatusCode)
				assert.Equal(t, "ollama", se.Provider)
				return
			}
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewOllamaProvider_DefaultTimeout(t *testing.T) {
	p := NewOllamaProvider("http://localhost:11434/", "llama3", 0)
	assert.Equal(t, 120*time.Second, p.Client.Timeout)
	assert.Equal(t, "http://localhost:11434", p.BaseURL)
}
