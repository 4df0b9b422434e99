package contract

import (
	"context"

	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/repository/specification"
)

type LegalChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.LegalChunk) error
	DeleteBySource(ctx context.Context, source string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LegalChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore orders by cosine similarity, highest first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*entity.ScoredLegalChunk, error)
}
