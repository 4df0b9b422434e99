package prompt

import (
	"fmt"
	"strings"

	"legal-chatbot-be/pkg/llm"
	"legal-chatbot-be/pkg/rag/history"
	"legal-chatbot-be/pkg/rag/search"
	"legal-chatbot-be/pkg/store"
)

// NoDocumentsNote replaces the context block body when retrieval came back empty.
const NoDocumentsNote = "No documents were retrieved for this question. Rely on the conversation history; if it does not settle the question, ask a clarifying question rather than guessing."

// NewContext assembles a PromptContext. historyLimit <= 0 passes the whole history.
func NewContext(directives string, chunks []store.RetrievedChunk, prior []store.Turn, historyLimit int, query string) store.PromptContext {
	return store.PromptContext{
		SystemDirectives: directives,
		RetrievedChunks:  chunks,
		PriorTurns:       history.Window(prior, historyLimit),
		NewQuery:         query,
	}
}

// Compose builds the message list for the model: one system message carrying
// the directives and the retrieved context, the prior turns in order, then the
// new query. It has no side effects.
func Compose(pc store.PromptContext) []llm.Message {
	messages := make([]llm.Message, 0, len(pc.PriorTurns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemContent(pc)})
	messages = append(messages, history.ToMessages(pc.PriorTurns, 0)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: pc.NewQuery})
	return messages
}

func systemContent(pc store.PromptContext) string {
	var sb strings.Builder
	sb.WriteString(pc.SystemDirectives)
	sb.WriteString("\n\nUse the following retrieved context:\n")
	writeContextBlock(&sb, pc.RetrievedChunks)
	return sb.String()
}

func writeContextBlock(sb *strings.Builder, chunks []store.RetrievedChunk) {
	sb.WriteString("<retrieved_context>\n")
	if len(chunks) == 0 {
		sb.WriteString(NoDocumentsNote)
		sb.WriteString("\n</retrieved_context>")
		return
	}
	for i, c := range chunks {
		fmt.Fprintf(sb, "[%d] Source: %s\n%s\n\n", i+1, c.Source, strings.TrimSpace(c.Text))
	}
	fmt.Fprintf(sb, "Distinct sources: %s\n", strings.Join(search.Sources(chunks), ", "))
	sb.WriteString("</retrieved_context>")
}
