package chat

import (
	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/models"
	chatRepo "github.com/KirkDiggler/ronda/internal/repositories/chat"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
)

// DefaultListLimit caps ListMessages when no limit is given
const DefaultListLimit = 50

// Config holds the dependencies of the chat service
type Config struct {
	// ChatRepo stores messages
	ChatRepo chatRepo.Repository

	// LedgerRepo resolves rooms for membership checks and linked channels
	LedgerRepo ledger.Repository

	// Relay is optional; when set, system messages are mirrored to the
	// room's linked channel
	Relay Relay

	// Clock provides the current time
	Clock clock.Clock

	// UUIDGenerator generates message IDs
	UUIDGenerator uuid.UUID
}

// PostSystemMessageInput contains parameters for posting an announcement
type PostSystemMessageInput struct {
	RoomID string `validate:"required"`
	Text   string `validate:"required"`

	// PollID links the message to a poll
	PollID string
}

// PostSystemMessageOutput contains the result of posting an announcement
type PostSystemMessageOutput struct {
	Message *models.Message
}

// SendMessageInput contains parameters for sending a member's message
type SendMessageInput struct {
	RoomID   string `validate:"required"`
	AuthorID string `validate:"required"`
	Text     string `validate:"required_without=MediaURL,max=2000"`
	MediaURL string `validate:"omitempty,url"`
}

// SendMessageOutput contains the result of sending a member's message
type SendMessageOutput struct {
	Message *models.Message
}

// ListMessagesInput contains parameters for reading room chat
type ListMessagesInput struct {
	RoomID string `validate:"required"`
	Limit  int    `validate:"gte=0,lte=500"`
}

// ListMessagesOutput contains the result of reading room chat
type ListMessagesOutput struct {
	Messages []*models.Message
}
