package implementation

import (
	"context"

	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/mapper"
	"legal-chatbot-be/internal/model"
	"legal-chatbot-be/internal/repository/contract"
	"legal-chatbot-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type LegalChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LegalChunkMapper
}

func NewLegalChunkRepository(db *gorm.DB) contract.LegalChunkRepository {
	return &LegalChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewLegalChunkMapper(),
	}
}

func (r *LegalChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LegalChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.LegalChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.LegalChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, insertBatchSize).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *LegalChunkRepositoryImpl) DeleteBySource(ctx context.Context, source string) error {
	return r.db.WithContext(ctx).Where("source = ?", source).Delete(&model.LegalChunk{}).Error
}

func (r *LegalChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LegalChunk, error) {
	var models []*model.LegalChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.LegalChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *LegalChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LegalChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LegalChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*entity.ScoredLegalChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	// pgvector <=> is cosine distance, so similarity = 1 - distance.
	type result struct {
		model.LegalChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("legal_chunks").
		Select("legal_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector)
	if threshold > 0 {
		query = query.Where("1 - (embedding <=> ?) >= ?", queryVector, threshold)
	}
	err := query.
		Order("similarity DESC").
		Order("source ASC").
		Order("chunk_index ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredLegalChunk, len(results))
	for i := range results {
		scored[i] = &entity.ScoredLegalChunk{
			Chunk:      r.mapper.ToEntity(&results[i].LegalChunk),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
