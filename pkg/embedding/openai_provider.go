package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// OpenAIProvider is an OpenAI-compatible /embeddings client. It also accepts
// the Ollama response shape so it can front an Ollama or TEI server.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "all-MiniLM-L6-v2"
	}
	return &OpenAIProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 5,
		baseDelay:  200 * time.Millisecond,
	}
}

type openAIEmbeddingRequest struct {
	Input  string `json:"input,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model"`
}

func (c *OpenAIProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	data, err := json.Marshal(openAIEmbeddingRequest{Input: text, Prompt: text, Model: c.model})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, lastDelay(lastErr, c.retryDelay(attempt-1))); err != nil {
				return nil, err
			}
		}

		vec, err := c.do(ctx, data)
		if err == nil {
			values := toFloat32(vec)
			if err := checkDimension(values); err != nil {
				return nil, err
			}
			return normalizeVector(values), nil
		}
		lastErr = err

		var re *retryableError
		if !errors.As(err, &re) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("openai embeddings failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *OpenAIProvider) do(ctx context.Context, data []byte) ([]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &retryableError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		re := &retryableError{err: fmt.Errorf("openai embeddings failed: %s", resp.Status)}
		// Respect Retry-After if provided
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			re.after = time.Duration(secs) * time.Second
		}
		return nil, re
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai embeddings failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: err}
	}

	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil && len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
		return openaiOut.Data[0].Embedding, nil
	}

	// Fallback to Ollama-native shape: { "embedding": [...] }
	var ollamaOut ollamaEmbeddingResponse
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding, nil
	}

	return nil, errors.New("no embedding returned")
}

func (c *OpenAIProvider) retryDelay(attempt int) time.Duration {
	// exponential backoff capped at 5s
	d := c.baseDelay << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

type retryableError struct {
	err   error
	after time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func lastDelay(err error, fallback time.Duration) time.Duration {
	var re *retryableError
	if errors.As(err, &re) && re.after > 0 {
		return re.after
	}
	return fallback
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
