package mapper

import (
	"encoding/json"

	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type LegalChunkMapper struct{}

func NewLegalChunkMapper() *LegalChunkMapper {
	return &LegalChunkMapper{}
}

func (m *LegalChunkMapper) ToEntity(c *model.LegalChunk) *entity.LegalChunk {
	if c == nil {
		return nil
	}
	var meta map[string]any
	if len(c.Metadata) > 0 {
		// Malformed metadata is dropped; Source is authoritative.
		_ = json.Unmarshal(c.Metadata, &meta)
	}
	return &entity.LegalChunk{
		Id:         c.Id,
		Source:     c.Source,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  c.Embedding.Slice(),
		Metadata:   meta,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *LegalChunkMapper) ToModel(c *entity.LegalChunk) *model.LegalChunk {
	if c == nil {
		return nil
	}
	meta := map[string]any{}
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta["source"] = c.Source
	raw, _ := json.Marshal(meta)

	return &model.LegalChunk{
		Id:         c.Id,
		Source:     c.Source,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
		Metadata:   datatypes.JSON(raw),
		CreatedAt:  c.CreatedAt,
	}
}
