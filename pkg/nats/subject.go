package nats

import (
	"strings"
	"time"

	"legal-chatbot-be/pkg/events"

	"github.com/nats-io/nats.go"
)

const (
	StreamName    = "EVENTS"
	subjectPrefix = "events."

	headerEventType  = "Event-Type"
	headerOccurredAt = "Event-Occurred-At"
)

// Subject maps an event type to its JetStream subject.
func Subject(eventType string) string {
	return subjectPrefix + eventType
}

// EventType is the inverse of Subject.
func EventType(subject string) string {
	return strings.TrimPrefix(subject, subjectPrefix)
}

func eventHeader(event events.Event) nats.Header {
	h := nats.Header{}
	h.Set(headerEventType, event.EventType())
	h.Set(headerOccurredAt, event.Timestamp().UTC().Format(time.RFC3339Nano))
	return h
}

// eventFromMessage rebuilds the event from headers, falling back to the
// subject and receive time for messages published without them.
func eventFromMessage(subject string, header nats.Header, payload map[string]interface{}) events.BaseEvent {
	eventType := header.Get(headerEventType)
	if eventType == "" {
		eventType = EventType(subject)
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, header.Get(headerOccurredAt))
	if err != nil {
		occurredAt = time.Now()
	}
	return events.BaseEvent{Type: eventType, Data: payload, OccurredAt: occurredAt}
}
