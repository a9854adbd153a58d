package event

import "github.com/KirkDiggler/ronda/internal/models"

// SaveEventInput contains parameters for storing an event
type SaveEventInput struct {
	Event *models.Event
}

// GetEventInput contains parameters for reading an event
type GetEventInput struct {
	RoomID  string
	EventID string
}

// ListEventsInput contains parameters for listing a room's events
type ListEventsInput struct {
	RoomID string
}

// ListEventsOutput contains the result of listing a room's events
type ListEventsOutput struct {
	Events []*models.Event
}

// UpdateEventInput describes a change to a stored event
type UpdateEventInput struct {
	RoomID  string
	EventID string

	// Apply mutates the current event. It is re-run if the event changes
	// before the write commits; returning an error aborts the update.
	Apply func(event *models.Event) error
}
