package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHuggingFaceURL = "https://router.huggingface.co/hf-inference/models"

// HuggingFaceProvider calls the hosted feature-extraction pipeline for
// sentence-transformers/all-MiniLM-L6-v2.
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}
	if model == "" {
		model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{"inputs": text})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/pipeline/feature-extraction", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface embedding error: status %d: %s", resp.StatusCode, string(payload))
	}

	vec, err := decodeFeatureExtraction(payload)
	if err != nil {
		return nil, err
	}
	values := toFloat32(vec)
	if err := checkDimension(values); err != nil {
		return nil, err
	}
	return normalizeVector(values), nil
}

// decodeFeatureExtraction accepts a pooled sentence vector, a batch of one
// pooled vector, or per-token vectors which are mean-pooled.
func decodeFeatureExtraction(payload []byte) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(payload, &flat); err == nil {
		return flat, nil
	}

	var nested [][]float64
	if err := json.Unmarshal(payload, &nested); err == nil {
		return meanPool(nested)
	}

	var batched [][][]float64
	if err := json.Unmarshal(payload, &batched); err == nil && len(batched) > 0 {
		return meanPool(batched[0])
	}

	return nil, errors.New("unrecognised feature-extraction response")
}

func meanPool(rows [][]float64) ([]float64, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty feature-extraction response")
	}
	if len(rows) == 1 {
		return rows[0], nil
	}
	out := make([]float64, len(rows[0]))
	for _, row := range rows {
		if len(row) != len(out) {
			return nil, errors.New("ragged token embeddings")
		}
		for i, v := range row {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rows))
	}
	return out, nil
}
