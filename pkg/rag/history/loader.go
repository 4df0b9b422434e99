package history

import (
	"legal-chatbot-be/pkg/llm"
	"legal-chatbot-be/pkg/store"
)

// Window returns the last limit turns. limit <= 0 keeps the whole history.
func Window(turns []store.Turn, limit int) []store.Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}

// ToMessages converts stored turns into chat messages, oldest first.
func ToMessages(turns []store.Turn, limit int) []llm.Message {
	turns = Window(turns, limit)
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == store.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	return messages
}
