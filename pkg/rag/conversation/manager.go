package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/events"
	"legal-chatbot-be/pkg/llm"
	"legal-chatbot-be/pkg/rag/prompt"
	"legal-chatbot-be/pkg/rag/router"
	"legal-chatbot-be/pkg/rag/search"
	"legal-chatbot-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store persists sessions and their turns. GetSession returns
// ErrSessionNotFound for unknown ids; GetTurns returns turns oldest first.
type Store interface {
	// StartSession creates a session and its first user turn atomically.
	StartSession(ctx context.Context, userID, name, content string) (string, store.Turn, error)
	GetSession(ctx context.Context, sessionID string) (*store.Session, error)
	ListSessions(ctx context.Context, userID string) ([]store.SessionSummary, error)
	DeleteSession(ctx context.Context, sessionID string) error
	AppendTurn(ctx context.Context, sessionID string, role store.Role, content string) (store.Turn, error)
	GetTurns(ctx context.Context, sessionID string) ([]store.Turn, error)
}

// ActiveSessions tracks the session each user currently has open.
type ActiveSessions interface {
	SetActive(userID, sessionID string)
	GetActive(userID string) (string, bool)
	ClearActive(userID string)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) search.Result
}

type Config struct {
	TopK int
	// HistoryLimit caps the prior turns sent to the model. Zero sends all of them.
	HistoryLimit int
	ModelTimeout time.Duration
	Temperature  float64
}

func DefaultConfig() Config {
	return Config{
		TopK:         search.DefaultTopK,
		ModelTimeout: 60 * time.Second,
		Temperature:  0.3,
	}
}

type SubmitRequest struct {
	UserID    string
	SessionID string // empty continues the active session
	Query     string
}

type SubmitResult struct {
	SessionID     string
	DisplayName   string
	Created       bool
	Strategy      router.Strategy
	Greeting      bool
	UserTurn      store.Turn
	AssistantTurn *store.Turn
	Sources       []string
	Warnings      []string
}

// Manager runs the turn pipeline: persist user turn, route, retrieve,
// compose, call the model, persist the reply.
type Manager struct {
	store     Store
	locker    Locker
	active    ActiveSessions
	router    *router.Router
	retriever Retriever
	llm       llm.LLMProvider
	publisher events.Publisher
	log       logger.ILogger
	config    Config
}

func NewManager(
	st Store,
	locker Locker,
	active ActiveSessions,
	rt *router.Router,
	retriever Retriever,
	provider llm.LLMProvider,
	publisher events.Publisher,
	log logger.ILogger,
	config Config,
) *Manager {
	if config.TopK <= 0 {
		config.TopK = search.DefaultTopK
	}
	if config.ModelTimeout <= 0 {
		config.ModelTimeout = 60 * time.Second
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Manager{
		store:     st,
		locker:    locker,
		active:    active,
		router:    rt,
		retriever: retriever,
		llm:       provider,
		publisher: publisher,
		log:       log,
		config:    config,
	}
}

// Submit processes one user message. Without a session id the message goes
// to the user's active session, or starts a new one when none is active.
// On a model failure the returned result still identifies the session and
// the stored user turn, and the error is a *TurnError.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	ctx, span := otel.Tracer("rag").Start(ctx, "conversation.Submit")
	defer span.End()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	res := &SubmitResult{SessionID: req.SessionID}
	if res.SessionID == "" {
		res.SessionID = m.activeSession(ctx, req.UserID)
	}

	var (
		prior    = []store.Turn{}
		userTurn store.Turn
	)
	if res.SessionID == "" {
		res.DisplayName = DisplayName(query)
		id, turn, err := m.store.StartSession(ctx, req.UserID, res.DisplayName, query)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		res.SessionID = id
		res.Created = true
		userTurn = turn
		m.publish(ctx, events.TypeSessionCreated, map[string]interface{}{
			"user_id":      req.UserID,
			"session_id":   id,
			"display_name": res.DisplayName,
		})
	} else {
		session, err := m.ownedSession(ctx, req.UserID, res.SessionID)
		if err != nil {
			return nil, err
		}
		res.DisplayName = session.DisplayName
	}
	span.SetAttributes(attribute.String("session_id", res.SessionID))
	m.active.SetActive(req.UserID, res.SessionID)

	unlock, err := m.locker.Lock(ctx, res.SessionID)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	if !res.Created {
		if prior, err = m.store.GetTurns(ctx, res.SessionID); err != nil {
			return nil, fmt.Errorf("load turns: %w", err)
		}
		if userTurn, err = m.store.AppendTurn(ctx, res.SessionID, store.RoleUser, query); err != nil {
			return nil, fmt.Errorf("append user turn: %w", err)
		}
	}
	res.UserTurn = userTurn

	decision := m.router.Route(query, prior)
	res.Strategy = decision.Strategy
	res.Greeting = decision.Greeting

	if decision.Greeting {
		return m.finish(ctx, req.UserID, res, decision.Reply)
	}

	retrieval := m.retriever.Retrieve(ctx, query, m.config.TopK)
	if retrieval.Warning != "" {
		res.Warnings = append(res.Warnings, retrieval.Warning)
	}
	res.Sources = search.Sources(retrieval.Chunks)

	pc := prompt.NewContext(decision.Directive, retrieval.Chunks, prior, m.config.HistoryLimit, query)
	messages := prompt.Compose(pc)

	reply, err := m.callModel(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		m.log.Error("CONVERSATION", "Model call failed", map[string]interface{}{
			"session_id": res.SessionID,
			"error":      err.Error(),
		})
		m.publish(ctx, events.TypeTurnFailed, map[string]interface{}{
			"user_id":    req.UserID,
			"session_id": res.SessionID,
			"reason":     UserMessage(err),
		})
		return res, &TurnError{SessionID: res.SessionID, UserTurn: userTurn, Err: err}
	}

	return m.finish(ctx, req.UserID, res, reply)
}

func (m *Manager) callModel(ctx context.Context, messages []llm.Message) (string, error) {
	ctx, span := otel.Tracer("rag").Start(ctx, "llm.Chat")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, m.config.ModelTimeout)
	defer cancel()

	reply, err := m.llm.Chat(callCtx, messages, llm.WithTemperature(m.config.Temperature))
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrModelTimeout, err)
		}
		return "", classifyModelError(err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrModelUnavailable)
	}
	return reply, nil
}

func (m *Manager) finish(ctx context.Context, userID string, res *SubmitResult, reply string) (*SubmitResult, error) {
	turn, err := m.store.AppendTurn(ctx, res.SessionID, store.RoleAssistant, reply)
	if err != nil {
		return res, fmt.Errorf("append assistant turn: %w", err)
	}
	res.AssistantTurn = &turn

	m.publish(ctx, events.TypeTurnCompleted, map[string]interface{}{
		"user_id":    userID,
		"session_id": res.SessionID,
		"strategy":   string(res.Strategy),
		"greeting":   res.Greeting,
		"sources":    res.Sources,
	})
	return res, nil
}

// Delete removes a session and all of its turns. Unknown or foreign ids report ErrSessionNotFound.
func (m *Manager) Delete(ctx context.Context, userID, sessionID string) error {
	if _, err := m.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}

	unlock, err := m.locker.Lock(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if active, ok := m.active.GetActive(userID); ok && active == sessionID {
		m.active.ClearActive(userID)
	}

	m.publish(ctx, events.TypeSessionDeleted, map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
	})
	return nil
}

// Select loads a session with its full turn list and makes it the active one.
func (m *Manager) Select(ctx context.Context, userID, sessionID string) (*store.Session, error) {
	session, err := m.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	turns, err := m.store.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	session.Turns = turns
	m.active.SetActive(userID, sessionID)
	return session, nil
}

// Active returns the user's active session, or nil when none is selected.
func (m *Manager) Active(ctx context.Context, userID string) (*store.Session, error) {
	id, ok := m.active.GetActive(userID)
	if !ok {
		return nil, nil
	}
	session, err := m.Select(ctx, userID, id)
	if errors.Is(err, ErrSessionNotFound) {
		m.active.ClearActive(userID)
		return nil, nil
	}
	return session, err
}

// NewChat clears the active session; the next Submit without an id starts a new one.
func (m *Manager) NewChat(userID string) {
	m.active.ClearActive(userID)
}

// List returns the user's sessions, newest first.
func (m *Manager) List(ctx context.Context, userID string) ([]store.SessionSummary, error) {
	return m.store.ListSessions(ctx, userID)
}

// activeSession returns the user's selected session id, or "" when none is
// selected or the selection no longer resolves to a session the user owns.
func (m *Manager) activeSession(ctx context.Context, userID string) string {
	id, ok := m.active.GetActive(userID)
	if !ok {
		return ""
	}
	if _, err := m.ownedSession(ctx, userID, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			m.active.ClearActive(userID)
		}
		return ""
	}
	return id
}

func (m *Manager) ownedSession(ctx context.Context, userID, sessionID string) (*store.Session, error) {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerUserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *Manager) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := m.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		m.log.Warn("CONVERSATION", "Event publish failed", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
