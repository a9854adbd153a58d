package chat

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/ronda/internal/services/chat Service,Relay

import "context"

// Service posts and reads room chat
type Service interface {
	// PostSystemMessage posts an automated announcement to a room
	PostSystemMessage(ctx context.Context, input *PostSystemMessageInput) (*PostSystemMessageOutput, error)

	// SendMessage posts a member's message to a room
	SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error)

	// ListMessages returns the latest messages of a room, oldest first
	ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error)
}

// Relay mirrors announcements to an external channel
type Relay interface {
	// RelayMessage delivers text to the given external channel
	RelayMessage(ctx context.Context, channelID, text string) error
}
