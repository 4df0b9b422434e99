package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func connect(t *testing.T, h *Hub, userID string, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: h, UserID: userID, Send: make(chan []byte, buffer)}
	before := h.ClientCount(userID)
	h.register <- c
	require.Eventually(t, func() bool { return h.ClientCount(userID) == before+1 }, time.Second, time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	return envelope{}
}

func TestHub_PublishTargetsUser(t *testing.T) {
	h := startHub(t)
	alice := connect(t, h, "alice", 4)
	aliceTablet := connect(t, h, "alice", 4)
	bob := connect(t, h, "bob", 4)

	err := h.Publish(context.Background(), events.New(events.TypeTurnCompleted, map[string]interface{}{
		"user_id":    "alice",
		"session_id": "s1",
	}))
	require.NoError(t, err)

	for _, c := range []*Client{alice, aliceTablet} {
		env := receive(t, c)
		assert.Equal(t, events.TypeTurnCompleted, env.Type)
		assert.Equal(t, "s1", env.Data["session_id"])
	}
	assert.Len(t, bob.Send, 0)
}

func TestHub_PublishWithoutUserBroadcasts(t *testing.T) {
	h := startHub(t)
	alice := connect(t, h, "alice", 4)
	bob := connect(t, h, "bob", 4)

	require.NoError(t, h.Publish(context.Background(), events.New(events.TypeDocumentIngested, map[string]interface{}{"source": "ipc.txt"})))

	assert.Equal(t, events.TypeDocumentIngested, receive(t, alice).Type)
	assert.Equal(t, events.TypeDocumentIngested, receive(t, bob).Type)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := startHub(t)
	slow := connect(t, h, "carol", 1)

	ev := events.New(events.TypeTurnCompleted, map[string]interface{}{"user_id": "carol"})
	require.NoError(t, h.Publish(context.Background(), ev))
	require.NoError(t, h.Publish(context.Background(), ev))

	require.Eventually(t, func() bool { return h.ClientCount("carol") == 0 }, time.Second, time.Millisecond)
	<-slow.Send
	_, open := <-slow.Send
	assert.False(t, open, "send channel is closed once the client is removed")
}
