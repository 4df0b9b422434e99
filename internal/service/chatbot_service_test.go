package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/internal/repository/memory"
	"legal-chatbot-be/pkg/llm"
	"legal-chatbot-be/pkg/rag/conversation"
	"legal-chatbot-be/pkg/rag/router"
	"legal-chatbot-be/pkg/rag/search"
	"legal-chatbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*store.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*store.Session)}
}

func (s *fakeStore) StartSession(_ context.Context, userID, name, content string) (string, store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("s%d", s.seq)
	t := store.Turn{Role: store.RoleUser, Content: content, Timestamp: time.Now()}
	s.sessions[id] = &store.Session{ID: id, OwnerUserID: userID, DisplayName: name, CreatedAt: time.Now(), Turns: []store.Turn{t}}
	return id, t, nil
}

func (s *fakeStore) GetSession(_ context.Context, id string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, conversation.ErrSessionNotFound
	}
	cp := *sess
	cp.Turns = nil
	return &cp, nil
}

func (s *fakeStore) ListSessions(_ context.Context, userID string) ([]store.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.SessionSummary
	for _, sess := range s.sessions {
		if sess.OwnerUserID == userID {
			out = append(out, store.SessionSummary{ID: sess.ID, DisplayName: sess.DisplayName, CreatedAt: sess.CreatedAt})
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *fakeStore) AppendTurn(_ context.Context, id string, role store.Role, content string) (store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := store.Turn{Role: role, Content: content, Timestamp: time.Now()}
	s.sessions[id].Turns = append(s.sessions[id].Turns, t)
	return t, nil
}

func (s *fakeStore) GetTurns(_ context.Context, id string) ([]store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return append([]store.Turn{}, sess.Turns...), nil
	}
	return []store.Turn{}, nil
}

type emptyRetriever struct{}

func (emptyRetriever) Retrieve(context.Context, string, int) search.Result { return search.Result{} }

type scriptedLLM struct {
	reply string
	err   error
}

func (l scriptedLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return l.reply, l.err
}

func (l scriptedLLM) Generate(ctx context.Context, _ string, opts ...llm.Option) (string, error) {
	return l.Chat(ctx, nil, opts...)
}

func newTestChatbotService(model llm.LLMProvider) IChatbotService {
	manager := conversation.NewManager(
		newFakeStore(),
		conversation.NewLocalLocker(),
		memory.NewActiveSessionRepository(),
		router.NewRouter(logger.NewNopLogger()),
		emptyRetriever{},
		model,
		nil,
		logger.NewNopLogger(),
		conversation.DefaultConfig(),
	)
	return NewChatbotService(manager)
}

func TestChatbotService_ChatStartsSession(t *testing.T) {
	svc := newTestChatbotService(scriptedLLM{reply: "Section 379 prescribes up to three years."})
	ctx := context.Background()

	res, err := svc.Chat(ctx, "u1", &dto.ChatRequest{Chat: "What is the punishment for theft?"})
	require.NoError(t, err)

	assert.True(t, res.NewSession)
	assert.NotEmpty(t, res.ChatSessionId)
	assert.Equal(t, "user", res.Sent.Role)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "assistant", res.Reply.Role)
	assert.Equal(t, "Section 379 prescribes up to three years.", res.Reply.Content)
	assert.NotNil(t, res.Sources)

	active, err := svc.ActiveSession(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, res.ChatSessionId, active.Id)
	assert.Len(t, active.Turns, 2)

	sessions, err := svc.ListSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestChatbotService_ModelFailureKeepsUserTurn(t *testing.T) {
	svc := newTestChatbotService(scriptedLLM{err: errors.New("connection refused")})
	ctx := context.Background()

	res, err := svc.Chat(ctx, "u1", &dto.ChatRequest{Chat: "Explain anticipatory bail"})

	var turnErr *conversation.TurnError
	require.True(t, errors.As(err, &turnErr))
	assert.ErrorIs(t, err, conversation.ErrModelUnavailable)
	require.NotNil(t, res)
	assert.Nil(t, res.Reply)
	assert.Equal(t, "Explain anticipatory bail", res.Sent.Content)

	detail, err := svc.SelectSession(ctx, "u1", res.ChatSessionId)
	require.NoError(t, err)
	assert.Len(t, detail.Turns, 1)
}

func TestChatbotService_ForeignSessionIsHidden(t *testing.T) {
	svc := newTestChatbotService(scriptedLLM{reply: "ok"})
	ctx := context.Background()

	res, err := svc.Chat(ctx, "owner", &dto.ChatRequest{Chat: "What does Article 21 protect?"})
	require.NoError(t, err)

	_, err = svc.SelectSession(ctx, "intruder", res.ChatSessionId)
	assert.ErrorIs(t, err, conversation.ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, "intruder", res.ChatSessionId), conversation.ErrSessionNotFound)

	require.NoError(t, svc.DeleteSession(ctx, "owner", res.ChatSessionId))
	active, err := svc.ActiveSession(ctx, "owner")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestChatbotService_NewChatClearsActive(t *testing.T) {
	svc := newTestChatbotService(scriptedLLM{reply: "ok"})
	ctx := context.Background()

	first, err := svc.Chat(ctx, "u1", &dto.ChatRequest{Chat: "Define cognizable offence"})
	require.NoError(t, err)
	followUp, err := svc.Chat(ctx, "u1", &dto.ChatRequest{Chat: "Give an example"})
	require.NoError(t, err)
	assert.False(t, followUp.NewSession)
	assert.Equal(t, first.ChatSessionId, followUp.ChatSessionId)

	svc.NewChat(ctx, "u1")
	active, err := svc.ActiveSession(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, active)

	next, err := svc.Chat(ctx, "u1", &dto.ChatRequest{Chat: "What is bail?"})
	require.NoError(t, err)
	assert.True(t, next.NewSession)
	assert.NotEqual(t, first.ChatSessionId, next.ChatSessionId)
}

func TestChatbotService_EmptyQuery(t *testing.T) {
	svc := newTestChatbotService(scriptedLLM{reply: "ok"})

	res, err := svc.Chat(context.Background(), "u1", &dto.ChatRequest{Chat: "   "})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, conversation.ErrEmptyQuery)
}
