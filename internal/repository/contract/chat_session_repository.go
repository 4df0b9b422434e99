package contract

import (
	"context"

	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// LockForUpdate takes a row lock on the session for the rest of the transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
}
