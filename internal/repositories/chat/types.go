package chat

import "github.com/KirkDiggler/ronda/internal/models"

// AddMessageInput contains parameters for storing a message
type AddMessageInput struct {
	Message *models.Message
}

// ListMessagesInput contains parameters for reading a room's newest messages
type ListMessagesInput struct {
	RoomID string

	// Limit caps how many of the newest messages are returned; 0 means all
	Limit int
}

// ListMessagesOutput contains the result of reading a room's newest messages
type ListMessagesOutput struct {
	Messages []*models.Message
}
