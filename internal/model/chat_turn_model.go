package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_turn_session_seq,priority:1"`
	Sequence      int       `gorm:"not null;uniqueIndex:idx_chat_turn_session_seq,priority:2"`
	Role          string    `gorm:"type:varchar(20);not null"`
	Content       string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
