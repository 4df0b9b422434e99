package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/pkg/serverutils"
	"legal-chatbot-be/pkg/rag/conversation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatbotService struct {
	chatRes *dto.ChatResponse
	chatErr error
	getErr  error
}

func (s *stubChatbotService) Chat(context.Context, string, *dto.ChatRequest) (*dto.ChatResponse, error) {
	return s.chatRes, s.chatErr
}

func (s *stubChatbotService) ListSessions(context.Context, string) ([]*dto.SessionSummaryResponse, error) {
	return []*dto.SessionSummaryResponse{}, nil
}

func (s *stubChatbotService) NewChat(context.Context, string) {}

func (s *stubChatbotService) ActiveSession(context.Context, string) (*dto.SessionDetailResponse, error) {
	return nil, nil
}

func (s *stubChatbotService) SelectSession(context.Context, string, string) (*dto.SessionDetailResponse, error) {
	return nil, s.getErr
}

func (s *stubChatbotService) DeleteSession(context.Context, string, string) error {
	return s.getErr
}

func newChatbotApp(svc *stubChatbotService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware})
	fakeAuth := func(ctx *fiber.Ctx) error {
		ctx.Locals("user_id", "u1")
		return ctx.Next()
	}
	NewChatbotController(svc, fakeAuth).RegisterRoutes(app.Group("/api"))
	return app
}

func TestChatbotController_ChatStatusCodes(t *testing.T) {
	partial := &dto.ChatResponse{ChatSessionId: "s1", Sent: dto.ChatTurnResponse{Role: "user", Content: "q"}}

	tests := []struct {
		name     string
		body     string
		svc      *stubChatbotService
		wantCode int
		wantData bool
	}{
		{name: "ok", body: `{"chat":"What is bail?"}`, svc: &stubChatbotService{chatRes: partial}, wantCode: fiber.StatusOK, wantData: true},
		{name: "missing chat", body: `{}`, svc: &stubChatbotService{}, wantCode: fiber.StatusBadRequest},
		{
			name:     "model unavailable",
			body:     `{"chat":"What is bail?"}`,
			svc:      &stubChatbotService{chatRes: partial, chatErr: &conversation.TurnError{SessionID: "s1", Err: conversation.ErrModelUnavailable}},
			wantCode: fiber.StatusBadGateway,
			wantData: true,
		},
		{
			name:     "model timeout",
			body:     `{"chat":"What is bail?"}`,
			svc:      &stubChatbotService{chatRes: partial, chatErr: &conversation.TurnError{SessionID: "s1", Err: conversation.ErrModelTimeout}},
			wantCode: fiber.StatusGatewayTimeout,
			wantData: true,
		},
		{name: "unknown session", body: `{"chat":"hi","chat_session_id":"nope"}`, svc: &stubChatbotService{chatErr: conversation.ErrSessionNotFound}, wantCode: fiber.StatusNotFound},
		{name: "store failure", body: `{"chat":"hi"}`, svc: &stubChatbotService{chatErr: errors.New("db down")}, wantCode: fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/api/chatbot/v1/chat", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := newChatbotApp(tt.svc).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var body struct {
				Success bool             `json:"success"`
				Message string           `json:"message"`
				Data    *dto.ChatResponse `json:"data"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode == fiber.StatusOK, body.Success)
			if tt.wantData {
				require.NotNil(t, body.Data)
				assert.Equal(t, "s1", body.Data.ChatSessionId)
			}
		})
	}
}

func TestChatbotController_DeleteUnknownSession(t *testing.T) {
	app := newChatbotApp(&stubChatbotService{getErr: conversation.ErrSessionNotFound})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/chatbot/v1/sessions/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
