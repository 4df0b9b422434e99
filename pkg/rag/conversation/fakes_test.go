package conversation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"legal-chatbot-be/pkg/llm"
	"legal-chatbot-be/pkg/rag/search"
	"legal-chatbot-be/pkg/store"
)

type memStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*store.Session
	// turnErr fails every turn write, including the first one of a new session.
	turnErr error
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*store.Session)}
}

func (s *memStore) StartSession(_ context.Context, userID, name, content string) (string, store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnErr != nil {
		return "", store.Turn{}, s.turnErr
	}
	s.seq++
	id := fmt.Sprintf("session-%d", s.seq)
	t := store.Turn{Role: store.RoleUser, Content: content, Timestamp: time.Now()}
	s.sessions[id] = &store.Session{
		ID:          id,
		OwnerUserID: userID,
		DisplayName: name,
		CreatedAt:   time.Now().Add(time.Duration(s.seq) * time.Millisecond),
		Turns:       []store.Turn{t},
	}
	return id, t, nil
}

func (s *memStore) GetSession(_ context.Context, id string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	cp.Turns = nil
	return &cp, nil
}

func (s *memStore) ListSessions(_ context.Context, userID string) ([]store.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []store.SessionSummary{}
	for _, sess := range s.sessions {
		if sess.OwnerUserID == userID {
			out = append(out, store.SessionSummary{ID: sess.ID, DisplayName: sess.DisplayName, CreatedAt: sess.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *memStore) AppendTurn(_ context.Context, id string, role store.Role, content string) (store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnErr != nil {
		return store.Turn{}, s.turnErr
	}
	sess, ok := s.sessions[id]
	if !ok {
		return store.Turn{}, ErrSessionNotFound
	}
	t := store.Turn{Role: role, Content: content, Timestamp: time.Now()}
	sess.Turns = append(sess.Turns, t)
	return t, nil
}

func (s *memStore) GetTurns(_ context.Context, id string) ([]store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return []store.Turn{}, nil
	}
	return append([]store.Turn{}, sess.Turns...), nil
}

type memActive struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemActive() *memActive { return &memActive{m: make(map[string]string)} }

func (a *memActive) SetActive(userID, sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.m[userID] = sessionID
}

func (a *memActive) GetActive(userID string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.m[userID]
	return id, ok
}

func (a *memActive) ClearActive(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.m, userID)
}

type stubRetriever struct {
	mu     sync.Mutex
	result search.Result
	calls  int
}

func (r *stubRetriever) Retrieve(context.Context, string, int) search.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.result
}

// fakeLLM echoes the final user message unless told otherwise and records every request.
type fakeLLM struct {
	mu       sync.Mutex
	requests [][]llm.Message
	delay    time.Duration
	err      error
	block    bool
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, append([]llm.Message{}, history...))
	delay, err, block := f.delay, f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return "", err
	}
	return "answer to: " + history[len(history)-1].Content, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *fakeLLM) lastRequest() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
