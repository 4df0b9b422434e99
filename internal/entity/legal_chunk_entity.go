package entity

import (
	"time"

	"github.com/google/uuid"
)

type LegalChunk struct {
	Id         uuid.UUID
	Source     string
	ChunkIndex int
	Content    string
	Embedding  []float32
	Metadata   map[string]any
	CreatedAt  time.Time
}

type ScoredLegalChunk struct {
	Chunk      *LegalChunk
	Similarity float64
}
