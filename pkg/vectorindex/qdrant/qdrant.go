package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"legal-chatbot-be/pkg/vectorindex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Index is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

var _ vectorindex.Index = (*Index)(nil)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "legal_chunks"
	}
	return &Index{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection with the given vector size when it does not exist yet.
func (s *Index) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	status, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
	if err == nil {
		return nil
	}
	if status != http.StatusNotFound {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	_, err = s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
	return err
}

func (s *Index) ReplaceSource(ctx context.Context, source string, records []vectorindex.Record) error {
	filter := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "source", "match": map[string]any{"value": source}},
			},
		},
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), filter, nil); err != nil {
		return fmt.Errorf("delete old chunks of %s: %w", source, err)
	}
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]any, len(records))
	for i, r := range records {
		payload := map[string]any{}
		for k, v := range r.Metadata {
			payload[k] = v
		}
		payload["source"] = r.Source
		payload["index"] = r.Index
		payload["text"] = r.Text
		points[i] = map[string]any{
			"id":      PointID(r.Source, r.Index),
			"vector":  r.Vector,
			"payload": payload,
		}
	}
	_, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), map[string]any{"points": points}, nil)
	return err
}

func (s *Index) Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Match, error) {
	if topK <= 0 {
		topK = 10
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	results := make([]vectorindex.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		m := vectorindex.Match{Score: r.Score}
		if v, ok := r.Payload["text"].(string); ok {
			m.Text = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			m.Source = v
		}
		results = append(results, m)
	}
	return results, nil
}

// PointID derives a stable point id so re-ingesting a file overwrites in place.
func PointID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+":"+strconv.Itoa(index))).String()
}

func (s *Index) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Index) do(ctx context.Context, method, url string, body any, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}
