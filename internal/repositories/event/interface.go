package event

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/ronda/internal/repositories/event Repository

import (
	"context"

	"github.com/KirkDiggler/ronda/internal/models"
)

// Repository defines the interface for room event persistence
type Repository interface {
	// SaveEvent persists an event
	SaveEvent(ctx context.Context, input *SaveEventInput) error

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, input *GetEventInput) (*models.Event, error)

	// ListEvents retrieves a room's events ordered by start date
	ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error)

	// UpdateEvent applies a read-modify-write to an event under optimistic locking
	UpdateEvent(ctx context.Context, input *UpdateEventInput) (*models.Event, error)
}
