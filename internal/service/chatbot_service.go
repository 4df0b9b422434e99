package service

import (
	"context"
	"errors"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/pkg/rag/conversation"
	"legal-chatbot-be/pkg/store"
)

type IChatbotService interface {
	// Chat returns a partial response alongside a *conversation.TurnError
	// when the user turn was stored but the model failed.
	Chat(ctx context.Context, userId string, req *dto.ChatRequest) (*dto.ChatResponse, error)
	ListSessions(ctx context.Context, userId string) ([]*dto.SessionSummaryResponse, error)
	NewChat(ctx context.Context, userId string)
	ActiveSession(ctx context.Context, userId string) (*dto.SessionDetailResponse, error)
	SelectSession(ctx context.Context, userId, sessionId string) (*dto.SessionDetailResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId string) error
}

type chatbotService struct {
	manager *conversation.Manager
}

func NewChatbotService(manager *conversation.Manager) IChatbotService {
	return &chatbotService{manager: manager}
}

func (s *chatbotService) Chat(ctx context.Context, userId string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	res, err := s.manager.Submit(ctx, conversation.SubmitRequest{
		UserID:    userId,
		SessionID: req.ChatSessionId,
		Query:     req.Chat,
	})
	if res == nil {
		return nil, err
	}

	out := &dto.ChatResponse{
		ChatSessionId:    res.SessionID,
		ChatSessionTitle: res.DisplayName,
		NewSession:       res.Created,
		Strategy:         string(res.Strategy),
		Sent:             toTurnResponse(res.UserTurn),
		Sources:          res.Sources,
		Warnings:         res.Warnings,
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if res.AssistantTurn != nil {
		reply := toTurnResponse(*res.AssistantTurn)
		out.Reply = &reply
	}

	var turnErr *conversation.TurnError
	if errors.As(err, &turnErr) {
		return out, err
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *chatbotService) ListSessions(ctx context.Context, userId string) ([]*dto.SessionSummaryResponse, error) {
	sessions, err := s.manager.List(ctx, userId)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SessionSummaryResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, &dto.SessionSummaryResponse{
			Id:        sess.ID,
			Title:     sess.DisplayName,
			CreatedAt: sess.CreatedAt,
		})
	}
	return out, nil
}

func (s *chatbotService) NewChat(_ context.Context, userId string) {
	s.manager.NewChat(userId)
}

// ActiveSession returns nil, nil when the user has no open session.
func (s *chatbotService) ActiveSession(ctx context.Context, userId string) (*dto.SessionDetailResponse, error) {
	session, err := s.manager.Active(ctx, userId)
	if err != nil || session == nil {
		return nil, err
	}
	return toSessionDetail(session), nil
}

func (s *chatbotService) SelectSession(ctx context.Context, userId, sessionId string) (*dto.SessionDetailResponse, error) {
	session, err := s.manager.Select(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	return toSessionDetail(session), nil
}

func (s *chatbotService) DeleteSession(ctx context.Context, userId, sessionId string) error {
	return s.manager.Delete(ctx, userId, sessionId)
}

func toTurnResponse(t store.Turn) dto.ChatTurnResponse {
	return dto.ChatTurnResponse{
		Role:      string(t.Role),
		Content:   t.Content,
		CreatedAt: t.Timestamp,
	}
}

func toSessionDetail(session *store.Session) *dto.SessionDetailResponse {
	turns := make([]dto.ChatTurnResponse, len(session.Turns))
	for i, t := range session.Turns {
		turns[i] = toTurnResponse(t)
	}
	return &dto.SessionDetailResponse{
		Id:    session.ID,
		Title: session.DisplayName,
		Turns: turns,
	}
}
