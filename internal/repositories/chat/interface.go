package chat

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/ronda/internal/repositories/chat Repository

import (
	"context"
)

// Repository defines the interface for room chat persistence
type Repository interface {
	// AddMessage stores a message and notifies the room's subscribers
	AddMessage(ctx context.Context, input *AddMessageInput) error

	// ListMessages retrieves the most recent messages of a room, oldest first
	ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error)
}
