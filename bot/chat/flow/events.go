package flow

import (
	"CallService/entity"
	"time"
)

// Event types published on the transaction lifecycle stream.
const (
	EventCreated     = "transaction.created"
	EventQueued      = "transaction.queued"
	EventAssigned    = "transaction.assigned"
	EventFinished    = "transaction.finished"
	EventTransferred = "transaction.transferred"
)

// Event is one transaction lifecycle notification, broadcast to
// manager dashboards.
type Event struct {
	Type        string             `json:"type"`
	Transaction entity.Transaction `json:"transaction"`
	At          time.Time          `json:"at"`
}

// EventSink receives lifecycle events. Implementations must not block.
type EventSink interface {
	Publish(event Event)
}

func (m *Manager) publish(eventType string, transaction *entity.Transaction) {
	if m.events == nil || transaction == nil {
		return
	}
	m.events.Publish(Event{
		Type:        eventType,
		Transaction: *transaction,
		At:          time.Now(),
	})
}
