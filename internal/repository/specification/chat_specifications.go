package specification

import (
	"legal-chatbot-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.OrderByCreatedDesc)
}

type TurnOrder struct{}

func (s TurnOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.OrderBySequence)
}
