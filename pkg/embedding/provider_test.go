package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorJSON(n int, v float64) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func magnitude(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestOllamaProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		_, _ = w.Write([]byte(`{"embedding":` + vectorJSON(Dimension, 2) + `}`))
	}))
	defer srv.Close()

	vec, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "bail conditions")
	require.NoError(t, err)
	assert.Len(t, vec, Dimension)
	assert.InDelta(t, 1.0, magnitude(vec), 1e-4)
}

func TestOllamaProvider_RejectsWrongDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":` + vectorJSON(768, 1) + `}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "nomic-embed-text").Generate(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestDecodeFeatureExtraction(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []float64
		wantErr bool
	}{
		{name: "pooled", payload: `[1,2,3]`, want: []float64{1, 2, 3}},
		{name: "single row", payload: `[[1,2,3]]`, want: []float64{1, 2, 3}},
		{name: "token rows are mean pooled", payload: `[[1,2],[3,4]]`, want: []float64{2, 3}},
		{name: "batched tokens", payload: `[[[0,2],[2,4]]]`, want: []float64{1, 3}},
		{name: "error object", payload: `{"error":"loading"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeFeatureExtraction([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAIProvider_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":` + vectorJSON(Dimension, 0.5) + `}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", srv.URL, "")
	p.baseDelay = time.Millisecond

	vec, err := p.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, vec, Dimension)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAIProvider_DoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("bad", srv.URL, "")
	p.baseDelay = time.Millisecond

	_, err := p.Generate(context.Background(), "q")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{1}, nil
}

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := p.Generate(context.Background(), "same question")
		require.NoError(t, err)
	}
	_, err := p.Generate(context.Background(), "other question")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
