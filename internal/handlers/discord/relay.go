package discord

import (
	"context"
	"errors"
	"fmt"
)

// Relay posts room announcements to the room's linked Discord channel
type Relay struct {
	session Session
}

// NewRelay creates a relay on an existing session
func NewRelay(session Session) (*Relay, error) {
	if session == nil {
		return nil, errors.New("session cannot be nil")
	}
	return &Relay{session: session}, nil
}

// RelayMessage sends text to a channel
func (r *Relay) RelayMessage(ctx context.Context, channelID, text string) error {
	if channelID == "" {
		return errors.New("channel ID cannot be empty")
	}

	if _, err := r.session.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("failed to send to channel %s: %w", channelID, err)
	}
	return nil
}
