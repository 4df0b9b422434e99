package store

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are never edited after they are stored.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a named, persisted conversation owned by one user.
// Turns are always held oldest first.
type Session struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	Turns       []Turn    `json:"turns"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// RetrievedChunk is a span of a legal document returned by similarity search.
// It lives for one request only.
type RetrievedChunk struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// PromptContext is everything the composer needs to build one model request.
type PromptContext struct {
	SystemDirectives string
	RetrievedChunks  []RetrievedChunk
	PriorTurns       []Turn
	NewQuery         string
}
