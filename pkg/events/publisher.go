package events

import (
	"context"
	"errors"
	"time"
)

const (
	TypeUserRegistered    = "USER_REGISTERED"
	TypeUserLogin         = "USER_LOGIN"
	TypeSessionCreated    = "SESSION_CREATED"
	TypeSessionDeleted    = "SESSION_DELETED"
	TypeTurnCompleted     = "TURN_COMPLETED"
	TypeTurnFailed        = "TURN_FAILED"
	TypeDocumentSubmitted = "DOCUMENT_SUBMITTED"
	TypeDocumentIngested  = "DOCUMENT_INGESTED"
)

// Publisher delivers events to some transport (NATS, websocket hub, ...).
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// New builds a BaseEvent stamped with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
