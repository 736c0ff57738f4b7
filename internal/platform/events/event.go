// Package events publishes domain lifecycle notifications. Services emit an
// Event after each successful write; subscribers receive it over WebSocket
// and, when brokers are configured, over Kafka. Publishing is best-effort:
// a failed publish never fails the request that produced it.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Topics group events by aggregate. WebSocket clients subscribe by topic.
const (
	TopicPatients     = "patients"
	TopicAppointments = "appointments"
	TopicLeads        = "leads"
)

// Event types follow an entity.verb convention.
const (
	TypePatientCreated       = "patient.created"
	TypePatientUpdated       = "patient.updated"
	TypePatientDeleted       = "patient.deleted"
	TypeAppointmentCreated   = "appointment.created"
	TypeAppointmentUpdated   = "appointment.updated"
	TypeAppointmentCancelled = "appointment.cancelled"
	TypeLeadCreated          = "lead.created"
	TypeLeadUpdated          = "lead.updated"
	TypeLeadStatusChanged    = "lead.status_changed"
	TypeLeadDeleted          = "lead.deleted"
)

// Event is a notification about a single entity change.
type Event struct {
	Type       string          `json:"type"`
	Topic      string          `json:"topic"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// New builds an Event with the timestamp set to now. The payload is
// marshalled here so callers pass their domain struct directly; a payload
// that cannot be marshalled is dropped rather than failing the event.
func New(eventType, topic, entityType, entityID string, payload interface{}) Event {
	ev := Event{
		Type:       eventType,
		Topic:      topic,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			ev.Data = data
		}
	}
	return ev
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout publishes to every wrapped publisher, returning the first error
// after all have been attempted.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Noop discards all events. Used when no sink is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
