package dto

import (
	"time"
)

type ChatRequest struct {
	ChatSessionId string `json:"chat_session_id"` // empty continues the active session, if any
	Chat          string `json:"chat" validate:"required,max=8000"`
}

type ChatTurnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatResponse struct {
	ChatSessionId    string            `json:"chat_session_id"`
	ChatSessionTitle string            `json:"chat_session_title"`
	NewSession       bool              `json:"new_session"`
	Strategy         string            `json:"strategy,omitempty"`
	Sent             ChatTurnResponse  `json:"sent"`
	Reply            *ChatTurnResponse `json:"reply"`
	Sources          []string          `json:"sources"`
	Warnings         []string          `json:"warnings,omitempty"`
}

type SessionSummaryResponse struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionDetailResponse struct {
	Id    string             `json:"id"`
	Title string             `json:"title"`
	Turns []ChatTurnResponse `json:"turns"`
}
