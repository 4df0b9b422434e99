package prompt

import (
	"strings"
	"testing"

	"legal-chatbot-be/pkg/llm"
	"legal-chatbot-be/pkg/rag/router"
	"legal-chatbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constitutionChunks() []store.RetrievedChunk {
	return []store.RetrievedChunk{
		{Text: "Article 370. Temporary provisions with respect to the State of Jammu and Kashmir.", Source: "constitution.pdf", Score: 0.82},
		{Text: "Clause (3): the President may by public notification declare...", Source: "constitution.pdf", Score: 0.77},
		{Text: "The Constitution (Application to Jammu and Kashmir) Order, 1954.", Source: "constitution.pdf", Score: 0.71},
	}
}

func TestCompose_NewTopicWithChunks(t *testing.T) {
	directive := router.BuildDirective(router.StrategyDelegated)
	pc := NewContext(directive, constitutionChunks(), nil, 0, "What is Article 370?")

	msgs := Compose(pc)

	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[0].Content, directive))
	for _, c := range constitutionChunks() {
		assert.Contains(t, msgs[0].Content, c.Text)
	}
	assert.Equal(t, 3, strings.Count(msgs[0].Content, "Source: constitution.pdf"))
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "What is Article 370?"}, msgs[1])
}

func TestCompose_FollowUpKeepsFullHistory(t *testing.T) {
	prior := []store.Turn{
		{Role: store.RoleUser, Content: "What is Article 370?"},
		{Role: store.RoleAssistant, Content: "Legal Summary: Article 370 granted special status..."},
	}
	unrelated := []store.RetrievedChunk{{Text: "Section 378 defines theft.", Source: "ipc.txt", Score: 0.12}}

	msgs := Compose(NewContext(router.BuildDirective(router.StrategyDelegated), unrelated, prior, 0, "What are the exceptions to that?"))

	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[0].Content, "most recent topic")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: prior[0].Content}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: prior[1].Content}, msgs[2])
	assert.Equal(t, "What are the exceptions to that?", msgs[3].Content)
}

func TestCompose_EmptyRetrievalStillCarriesHistory(t *testing.T) {
	prior := []store.Turn{
		{Role: store.RoleUser, Content: "q1"},
		{Role: store.RoleAssistant, Content: "a1"},
		{Role: store.RoleUser, Content: "q2"},
		{Role: store.RoleAssistant, Content: "a2"},
	}

	msgs := Compose(NewContext("directives", nil, prior, 0, "q3"))

	require.Len(t, msgs, 6)
	assert.Contains(t, msgs[0].Content, NoDocumentsNote)
	assert.NotContains(t, msgs[0].Content, "Source:")
	assert.Equal(t, "q3", msgs[5].Content)
}

func TestCompose_IsDeterministic(t *testing.T) {
	pc := NewContext("d", constitutionChunks(), []store.Turn{{Role: store.RoleUser, Content: "x"}}, 0, "y")
	assert.Equal(t, Compose(pc), Compose(pc))
}

func TestNewContext_HistoryLimit(t *testing.T) {
	prior := []store.Turn{
		{Role: store.RoleUser, Content: "old"},
		{Role: store.RoleAssistant, Content: "old reply"},
		{Role: store.RoleUser, Content: "recent"},
		{Role: store.RoleAssistant, Content: "recent reply"},
	}

	pc := NewContext("d", nil, prior, 2, "q")

	assert.Equal(t, prior[2:], pc.PriorTurns)
}

func TestCompose_ListsDistinctSourcesOnce(t *testing.T) {
	chunks := append(constitutionChunks(), store.RetrievedChunk{Text: "Theft.", Source: "ipc.txt"})

	msgs := Compose(NewContext("d", chunks, nil, 0, "q"))

	assert.Contains(t, msgs[0].Content, "Distinct sources: constitution.pdf, ipc.txt")
}
