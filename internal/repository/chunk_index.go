package repository

import (
	"context"
	"fmt"

	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/repository/unitofwork"
	"legal-chatbot-be/pkg/vectorindex"
)

// ChunkIndex serves vector search over the legal_chunks table.
type ChunkIndex struct {
	uowFactory unitofwork.RepositoryFactory
	minScore   float64
}

func NewChunkIndex(uowFactory unitofwork.RepositoryFactory, minScore float64) *ChunkIndex {
	return &ChunkIndex{uowFactory: uowFactory, minScore: minScore}
}

var _ vectorindex.Index = (*ChunkIndex)(nil)

func (c *ChunkIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Match, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.LegalChunkRepository().SearchSimilarWithScore(ctx, vector, topK, c.minScore)
	if err != nil {
		return nil, fmt.Errorf("pgvector query: %w", err)
	}
	matches := make([]vectorindex.Match, len(scored))
	for i, s := range scored {
		matches[i] = vectorindex.Match{
			Text:   s.Chunk.Content,
			Source: s.Chunk.Source,
			Score:  s.Similarity,
		}
	}
	return matches, nil
}

// ReplaceSource swaps a source's chunks inside one transaction so readers
// never see a half-ingested document.
func (c *ChunkIndex) ReplaceSource(ctx context.Context, source string, records []vectorindex.Record) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.LegalChunkRepository()
	if err := repo.DeleteBySource(ctx, source); err != nil {
		return fmt.Errorf("delete chunks of %s: %w", source, err)
	}

	chunks := make([]*entity.LegalChunk, len(records))
	for i, r := range records {
		chunks[i] = &entity.LegalChunk{
			Source:     source,
			ChunkIndex: r.Index,
			Content:    r.Text,
			Embedding:  r.Vector,
			Metadata:   r.Metadata,
		}
	}
	if err := repo.CreateBulk(ctx, chunks); err != nil {
		return fmt.Errorf("insert chunks of %s: %w", source, err)
	}
	return uow.Commit()
}
