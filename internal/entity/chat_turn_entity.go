package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurnRole string

const (
	ChatTurnRoleUser      ChatTurnRole = "user"
	ChatTurnRoleAssistant ChatTurnRole = "assistant"
)

// ChatTurn is immutable once written. Sequence is assigned per session and
// breaks ties between turns created in the same instant.
type ChatTurn struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Sequence      int
	Role          ChatTurnRole
	Content       string
	CreatedAt     time.Time
}
