package repository

import (
	"context"
	"fmt"

	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/repository/specification"
	"legal-chatbot-be/internal/repository/unitofwork"
	"legal-chatbot-be/pkg/rag/conversation"
	"legal-chatbot-be/pkg/store"

	"github.com/google/uuid"
)

// SessionStore persists chat sessions and turns in PostgreSQL.
type SessionStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSessionStore(uowFactory unitofwork.RepositoryFactory) *SessionStore {
	return &SessionStore{uowFactory: uowFactory}
}

var _ conversation.Store = (*SessionStore)(nil)

// StartSession creates the session together with its first user turn so a
// failed insert never leaves an empty session behind.
func (s *SessionStore) StartSession(ctx context.Context, userID, name, content string) (string, store.Turn, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return "", store.Turn{}, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return "", store.Turn{}, err
	}
	defer uow.Rollback()

	session := entity.ChatSession{
		Id:     uuid.New(),
		UserId: ownerID,
		Title:  name,
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return "", store.Turn{}, fmt.Errorf("create session: %w", err)
	}
	turn := entity.ChatTurn{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Sequence:      1,
		Role:          entity.ChatTurnRole(store.RoleUser),
		Content:       content,
	}
	if err := uow.ChatTurnRepository().Create(ctx, &turn); err != nil {
		return "", store.Turn{}, fmt.Errorf("append turn: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return "", store.Turn{}, err
	}
	return session.Id.String(), toStoreTurn(&turn), nil
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*store.Session, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, conversation.ErrSessionNotFound
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, conversation.ErrSessionNotFound
	}
	return &store.Session{
		ID:          sess.Id.String(),
		OwnerUserID: sess.UserId.String(),
		DisplayName: sess.Title,
		CreatedAt:   sess.CreatedAt,
	}, nil
}

func (s *SessionStore) ListSessions(ctx context.Context, userID string) ([]store.SessionSummary, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: ownerID},
		specification.NewestFirst{},
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]store.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, store.SessionSummary{
			ID:          sess.Id.String(),
			DisplayName: sess.Title,
			CreatedAt:   sess.CreatedAt,
		})
	}
	return out, nil
}

// DeleteSession removes the session and every turn in one transaction.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return conversation.ErrSessionNotFound
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sess, err := uow.ChatSessionRepository().LockForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	if sess == nil {
		return conversation.ErrSessionNotFound
	}
	if err := uow.ChatTurnRepository().DeleteBySessionId(ctx, id); err != nil {
		return fmt.Errorf("delete turns: %w", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return uow.Commit()
}

// AppendTurn locks the session row so concurrent writers from other
// instances still get distinct, gapless sequence numbers.
func (s *SessionStore) AppendTurn(ctx context.Context, sessionID string, role store.Role, content string) (store.Turn, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return store.Turn{}, conversation.ErrSessionNotFound
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return store.Turn{}, err
	}
	defer uow.Rollback()

	sess, err := uow.ChatSessionRepository().LockForUpdate(ctx, id)
	if err != nil {
		return store.Turn{}, fmt.Errorf("lock session: %w", err)
	}
	if sess == nil {
		return store.Turn{}, conversation.ErrSessionNotFound
	}

	seq, err := uow.ChatTurnRepository().NextSequence(ctx, id)
	if err != nil {
		return store.Turn{}, fmt.Errorf("next sequence: %w", err)
	}
	turn := entity.ChatTurn{
		Id:            uuid.New(),
		ChatSessionId: id,
		Sequence:      seq,
		Role:          entity.ChatTurnRole(role),
		Content:       content,
	}
	if err := uow.ChatTurnRepository().Create(ctx, &turn); err != nil {
		return store.Turn{}, fmt.Errorf("append turn: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return store.Turn{}, err
	}
	return toStoreTurn(&turn), nil
}

func (s *SessionStore) GetTurns(ctx context.Context, sessionID string) ([]store.Turn, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, conversation.ErrSessionNotFound
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: id},
		specification.TurnOrder{},
	)
	if err != nil {
		return nil, fmt.Errorf("get turns: %w", err)
	}
	out := make([]store.Turn, len(turns))
	for i, t := range turns {
		out[i] = toStoreTurn(t)
	}
	return out, nil
}

func toStoreTurn(t *entity.ChatTurn) store.Turn {
	return store.Turn{
		Role:      store.Role(t.Role),
		Content:   t.Content,
		Timestamp: t.CreatedAt,
	}
}
