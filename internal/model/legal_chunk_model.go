package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type LegalChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Source     string          `gorm:"type:varchar(255);not null;index"`
	ChunkIndex int             `gorm:"not null;default:0"`
	Content    string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(384)"` // all-MiniLM-L6-v2
	Metadata   datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (LegalChunk) TableName() string {
	return "legal_chunks"
}
