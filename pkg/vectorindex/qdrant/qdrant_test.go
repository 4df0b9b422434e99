package qdrant

import (
	"context"
	"encoding/json"
	"legal-chatbot-be/pkg/vectorindex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/legal_chunks/points/search", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("api-key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["limit"])
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"text":"Article 370 ...","source":"constitution.pdf"}},
			{"score":0.55,"payload":{"text":"Schedule","source":"constitution.pdf"}}
		]}`))
	}))
	defer srv.Close()

	idx := NewIndex(Config{URL: srv.URL, APIKey: "key"})
	got, err := idx.Query(context.Background(), []float32{0.1, 0.2}, 3)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, vectorindex.Match{Text: "Article 370 ...", Source: "constitution.pdf", Score: 0.91}, got[0])
}

func TestIndex_ReplaceSourceDeletesThenUpserts(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			var body struct {
				Points []struct {
					ID      string         `json:"id"`
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Points, 1)
			assert.Equal(t, PointID("ipc.txt", 0), body.Points[0].ID)
			assert.Equal(t, "ipc.txt", body.Points[0].Payload["source"])
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer srv.Close()

	idx := NewIndex(Config{URL: srv.URL})
	err := idx.ReplaceSource(context.Background(), "ipc.txt", []vectorindex.Record{
		{Source: "ipc.txt", Index: 0, Text: "Section 302", Vector: []float32{1}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"POST /collections/legal_chunks/points/delete",
		"PUT /collections/legal_chunks/points",
	}, calls)
}

func TestIndex_EnsureCollectionCreatesWhenMissing(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = true
		}
	}))
	defer srv.Close()

	require.NoError(t, NewIndex(Config{URL: srv.URL}).EnsureCollection(context.Background(), 384))
	assert.True(t, created)
}

func TestPointIDIsStable(t *testing.T) {
	assert.Equal(t, PointID("a.txt", 1), PointID("a.txt", 1))
	assert.NotEqual(t, PointID("a.txt", 1), PointID("a.txt", 2))
}
