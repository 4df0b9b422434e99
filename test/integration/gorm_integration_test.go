package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"

	"legal-chatbot-be/internal/model"
	"legal-chatbot-be/internal/repository"
	"legal-chatbot-be/internal/repository/unitofwork"
	"legal-chatbot-be/pkg/database"
	"legal-chatbot-be/pkg/embedding"
	"legal-chatbot-be/pkg/rag/conversation"
	"legal-chatbot-be/pkg/store"
	"legal-chatbot-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.ChatSession{}, &model.ChatTurn{}, &model.LegalChunk{}))
	return db
}

func TestSessionStore_RoundTrip(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	st := repository.NewSessionStore(unitofwork.NewRepositoryFactory(db))
	owner := uuid.NewString()

	id, first, err := st.StartSession(ctx, owner, "Bail under section 437", "q-first")
	require.NoError(t, err)
	assert.Equal(t, store.RoleUser, first.Role)
	t.Cleanup(func() { _ = st.DeleteSession(ctx, id) })

	// Concurrent appends must still get distinct, gapless sequence numbers.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := st.AppendTurn(ctx, id, store.RoleUser, fmt.Sprintf("q%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	turns, err := st.GetTurns(ctx, id)
	require.NoError(t, err)
	require.Len(t, turns, 9)
	assert.Equal(t, "q-first", turns[0].Content)

	sessions, err := st.ListSessions(ctx, owner)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Bail under section 437", sessions[0].DisplayName)

	require.NoError(t, st.DeleteSession(ctx, id))
	_, err = st.GetSession(ctx, id)
	assert.ErrorIs(t, err, conversation.ErrSessionNotFound)
}

func TestChunkIndex_ReplaceAndQuery(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	idx := repository.NewChunkIndex(unitofwork.NewRepositoryFactory(db), 0)
	source := "it-" + uuid.NewString() + ".txt"
	t.Cleanup(func() { _ = idx.ReplaceSource(ctx, source, nil) })

	unit := func(axis int) []float32 {
		v := make([]float32, embedding.Dimension)
		v[axis] = 1
		return v
	}
	require.NoError(t, idx.ReplaceSource(ctx, source, []vectorindex.Record{
		{Source: source, Index: 0, Text: "theft", Vector: unit(0)},
		{Source: source, Index: 1, Text: "murder", Vector: unit(1)},
	}))

	matches, err := idx.Query(ctx, unit(1), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "murder", matches[0].Text)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)

	// Replacing drops the old chunks.
	require.NoError(t, idx.ReplaceSource(ctx, source, []vectorindex.Record{
		{Source: source, Index: 0, Text: "robbery", Vector: unit(1)},
	}))
	matches, err = idx.Query(ctx, unit(1), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "robbery", matches[0].Text)
}
