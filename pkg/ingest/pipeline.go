package ingest

import (
	"context"
	"fmt"

	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/embedding"
	"legal-chatbot-be/pkg/utils"
	"legal-chatbot-be/pkg/vectorindex"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
)

// Pipeline splits documents, embeds every chunk and replaces the source's
// previous chunks in the index.
type Pipeline struct {
	splitter *utils.RecursiveSplitter
	embedder embedding.EmbeddingProvider
	index    vectorindex.Index
	log      logger.ILogger
}

func NewPipeline(embedder embedding.EmbeddingProvider, index vectorindex.Index, chunkSize, chunkOverlap int, log logger.ILogger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Pipeline{
		splitter: utils.NewRecursiveSplitter(chunkSize, chunkOverlap),
		embedder: embedder,
		index:    index,
		log:      log,
	}
}

// Ingest returns the number of chunks stored. A failed embedding aborts the
// whole document so the index never holds a partial source.
func (p *Pipeline) Ingest(ctx context.Context, doc *Document) (int, error) {
	ctx, span := otel.Tracer("ingest").Start(ctx, "Pipeline.Ingest")
	defer span.End()
	span.SetAttributes(attribute.String("ingest.source", doc.Source))

	chunks := p.splitter.Split(doc.Text)
	records := make([]vectorindex.Record, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := p.embedder.Generate(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d of %s: %w", i, doc.Source, err)
		}
		records = append(records, vectorindex.Record{
			Source:   doc.Source,
			Index:    i,
			Text:     chunk,
			Vector:   vec,
			Metadata: map[string]any{"source": doc.Source},
		})
	}

	if err := p.index.ReplaceSource(ctx, doc.Source, records); err != nil {
		return 0, fmt.Errorf("store chunks of %s: %w", doc.Source, err)
	}
	span.SetAttributes(attribute.Int("ingest.chunks", len(records)))
	p.log.Info("INGEST", "Document ingested", map[string]interface{}{
		"source": doc.Source,
		"chunks": len(records),
	})
	return len(records), nil
}
