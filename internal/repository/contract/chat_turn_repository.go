package contract

import (
	"context"

	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	NextSequence(ctx context.Context, sessionId uuid.UUID) (int, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
