package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// envelope is what clients receive for every event.
type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"` // "*" for everyone
	Message      json.RawMessage `json:"message"`
}

// Hub fans session events out to websocket clients. With Redis configured,
// events also reach clients connected to other instances.
type Hub struct {
	// user id -> connections (one per device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

var _ events.Publisher = (*Hub)(nil)

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run owns the client map until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.clients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
	}
}

// ClientCount reports the local connections of a user.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish delivers the event to the user named by its "user_id" payload
// field, or to every client when the field is absent.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return err
	}

	target := "*"
	if uid, ok := event.Payload()["user_id"].(string); ok && uid != "" {
		target = uid
	}
	h.deliver(target, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.instanceID, TargetUserID: target, Message: data})
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// deliver never blocks: a client whose buffer is full is dropped. Sends
// happen under the read lock so remove cannot close a channel mid-send.
func (h *Hub) deliver(target string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	send := func(client *Client) {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": client.UserID})
			go func() { h.unregister <- client }()
		}
	}
	if target != "*" {
		for _, client := range h.clients[target] {
			send(client)
		}
		return
	}
	for _, clients := range h.clients {
		for _, client := range clients {
			send(client)
		}
	}
}

// subscribeToRedis relays events published by other instances. Every
// instance listens on one channel and filters on the target user locally.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliver(payload.TargetUserID, payload.Message)
		}
	}
}
