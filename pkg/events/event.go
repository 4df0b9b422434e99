package events

import "time"

// Event is a notification about a user, a chat session, a turn or an
// ingested document, fanned out to websocket clients and NATS.
type Event interface {
	// EventType is one of the Type* constants, e.g. TURN_COMPLETED.
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the only Event implementation; New builds it and the NATS
// subscriber rebuilds it from the wire envelope.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string { return e.Type }

func (e BaseEvent) Payload() map[string]interface{} { return e.Data }

func (e BaseEvent) Timestamp() time.Time { return e.OccurredAt }
