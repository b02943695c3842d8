package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketInserted EventType = "INSERT"
	EventTicketUpdated  EventType = "UPDATE"
	EventTicketDeleted  EventType = "DELETE"
)

// ChangeTypes lists every store change event.
var ChangeTypes = []EventType{EventTicketInserted, EventTicketUpdated, EventTicketDeleted}

// ParseEventType validates a change type received from the store.
func ParseEventType(s string) (EventType, error) {
	for _, t := range ChangeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown change type %q", s)
}

// Event represents a change to the tickets table.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a change event for ticketID.
func NewEvent(eventType EventType, ticketID string, now time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: now,
	}
}
