package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/embedding"
	"legal-chatbot-be/pkg/store"
	"legal-chatbot-be/pkg/vectorindex"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var ErrRetrievalUnavailable = errors.New("retrieval unavailable")

const DefaultTopK = 10

// RetrievalWarning is the user-facing text when the document search could not run.
const RetrievalWarning = "Document search is temporarily unavailable; this answer relies on the conversation history only."

// Config encapsulates search parameters
type Config struct {
	TopK int
	// MinScore drops hits below this cosine similarity. Zero keeps everything.
	MinScore float64
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{TopK: DefaultTopK}
}

// Result never carries a hard failure: Err is informational and Chunks is
// empty whenever Err is set.
type Result struct {
	Chunks  []store.RetrievedChunk
	Warning string
	Err     error
}

// Orchestrator handles query embedding and vector search
type Orchestrator struct {
	embedder embedding.EmbeddingProvider
	index    vectorindex.Index
	config   Config
	log      logger.ILogger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(embedder embedding.EmbeddingProvider, index vectorindex.Index, config Config, log logger.ILogger) *Orchestrator {
	if config.TopK <= 0 {
		config.TopK = DefaultTopK
	}
	return &Orchestrator{
		embedder: embedder,
		index:    index,
		config:   config,
		log:      log,
	}
}

// Retrieve runs on every non-greeting turn. topK <= 0 uses the configured default.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, topK int) Result {
	ctx, span := otel.Tracer("rag").Start(ctx, "search.Retrieve")
	defer span.End()

	if topK <= 0 {
		topK = o.config.TopK
	}
	span.SetAttributes(attribute.Int("top_k", topK))

	vec, err := o.embedder.Generate(ctx, query)
	if err != nil {
		return o.degrade("embedding", err)
	}

	matches, err := o.index.Query(ctx, vec, topK)
	if err != nil {
		return o.degrade("vector index", err)
	}

	chunks := make([]store.RetrievedChunk, 0, len(matches))
	for i, m := range matches {
		if m.Score < o.config.MinScore {
			o.log.Debug("SEARCH", "Chunk filtered", map[string]interface{}{"rank": i + 1, "score": m.Score, "source": m.Source})
			continue
		}
		source := strings.TrimSpace(m.Source)
		if source == "" {
			source = "unknown"
		}
		chunks = append(chunks, store.RetrievedChunk{Text: m.Text, Source: source, Score: m.Score})
	}

	span.SetAttributes(attribute.Int("chunks", len(chunks)))
	o.log.Info("SEARCH", "Retrieval complete", map[string]interface{}{
		"raw":     len(matches),
		"kept":    len(chunks),
		"sources": Sources(chunks),
	})

	return Result{Chunks: chunks}
}

func (o *Orchestrator) degrade(stage string, err error) Result {
	o.log.Warn("SEARCH", "Retrieval degraded to history-only", map[string]interface{}{
		"stage": stage,
		"error": err.Error(),
	})
	return Result{
		Chunks:  []store.RetrievedChunk{},
		Warning: RetrievalWarning,
		Err:     fmt.Errorf("%w: %s: %v", ErrRetrievalUnavailable, stage, err),
	}
}

// Sources returns distinct source names in first-seen order.
func Sources(chunks []store.RetrievedChunk) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		out = append(out, c.Source)
	}
	return out
}
