package chat

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	chatRepo "github.com/KirkDiggler/ronda/internal/repositories/chat"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	chatRepo      chatRepo.Repository
	ledgerRepo    ledger.Repository
	relay         Relay
	clock         clock.Clock
	uuidGenerator uuid.UUID
}

// New creates a new chat service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.ChatRepo == nil {
		return nil, ErrNilChatRepo
	}

	if cfg.LedgerRepo == nil {
		return nil, ErrNilLedgerRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		chatRepo:      cfg.ChatRepo,
		ledgerRepo:    cfg.LedgerRepo,
		relay:         cfg.Relay,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
	}, nil
}

// PostSystemMessage posts an automated announcement to a room and mirrors it
// to the room's linked channel when a relay is configured
func (s *service) PostSystemMessage(ctx context.Context, input *PostSystemMessageInput) (*PostSystemMessageOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	kind := models.MessageKindSystem
	if input.PollID != "" {
		kind = models.MessageKindPoll
	}

	message := &models.Message{
		ID:        s.uuidGenerator.NewUUID(),
		RoomID:    input.RoomID,
		AuthorID:  models.SystemUserID,
		Kind:      kind,
		Text:      input.Text,
		PollID:    input.PollID,
		Timestamp: s.clock.Now(),
	}

	if err := s.chatRepo.AddMessage(ctx, &chatRepo.AddMessageInput{Message: message}); err != nil {
		return nil, fmt.Errorf("failed to post system message: %w", err)
	}

	s.relayMessage(ctx, input.RoomID, input.Text)

	return &PostSystemMessageOutput{
		Message: message,
	}, nil
}

// relayMessage mirrors text to the room's linked channel. Failures are logged
// and dropped.
func (s *service) relayMessage(ctx context.Context, roomID, text string) {
	if s.relay == nil {
		return
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: roomID})
	if err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Msg("relay skipped, room lookup failed")
		return
	}

	if room.ChannelID == "" {
		return
	}

	if err := s.relay.RelayMessage(ctx, room.ChannelID, text); err != nil {
		log.Warn().Err(err).
			Str("room_id", roomID).
			Str("channel_id", room.ChannelID).
			Msg("failed to relay message")
	}
}

// SendMessage posts a member's message to a room
func (s *service) SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	if !room.IsMember(input.AuthorID) {
		return nil, ErrNotRoomMember
	}

	message := &models.Message{
		ID:        s.uuidGenerator.NewUUID(),
		RoomID:    input.RoomID,
		AuthorID:  input.AuthorID,
		Kind:      models.MessageKindText,
		Text:      input.Text,
		MediaURL:  input.MediaURL,
		Timestamp: s.clock.Now(),
	}

	if err := s.chatRepo.AddMessage(ctx, &chatRepo.AddMessageInput{Message: message}); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return &SendMessageOutput{
		Message: message,
	}, nil
}

// ListMessages returns the latest messages of a room, oldest first
func (s *service) ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	output, err := s.chatRepo.ListMessages(ctx, &chatRepo.ListMessagesInput{
		RoomID: input.RoomID,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListMessagesOutput{
		Messages: output.Messages,
	}, nil
}
