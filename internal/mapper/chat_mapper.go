package mapper

import (
	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionsToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ChatSessionToEntity(s)
	}
	return entities
}

// Turn Mappers

func (m *ChatMapper) ChatTurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	return &entity.ChatTurn{
		Id:            t.Id,
		ChatSessionId: t.ChatSessionId,
		Sequence:      t.Sequence,
		Role:          entity.ChatTurnRole(t.Role),
		Content:       t.Content,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *ChatMapper) ChatTurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}
	return &model.ChatTurn{
		Id:            t.Id,
		ChatSessionId: t.ChatSessionId,
		Sequence:      t.Sequence,
		Role:          string(t.Role),
		Content:       t.Content,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *ChatMapper) ChatTurnsToEntities(turns []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(turns))
	for i, t := range turns {
		entities[i] = m.ChatTurnToEntity(t)
	}
	return entities
}
