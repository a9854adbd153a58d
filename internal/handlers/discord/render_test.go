package discord

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComponentID(t *testing.T) {
	tests := []struct {
		name     string
		customID string
		action   string
		args     []string
		ok       bool
	}{
		{"accept", componentID(actionAcceptDuel, "d1"), actionAcceptDuel, []string{"d1"}, true},
		{"vote", componentID(actionVote, "p1", "draw"), actionVote, []string{"p1", "draw"}, true},
		{"foreign", "join_game", "", nil, false},
		{"empty action", componentPrefix, "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, args, ok := parseComponentID(tt.customID)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestErrorTypeFor(t *testing.T) {
	tests := []struct {
		err  error
		want messaging.ErrorType
	}{
		{fmt.Errorf("stake: %w", models.ErrInsufficientCredits), messaging.ErrorTypeInsufficientCredits},
		{bet.ErrNotRoomAdmin, messaging.ErrorTypeNotAdmin},
		{duel.ErrNotDuelOpponent, messaging.ErrorTypeNotMember},
		{bet.ErrBetNotPending, messaging.ErrorTypeAlreadyResolved},
		{ledger.ErrPollNotFound, messaging.ErrorTypeNotFound},
		{fmt.Errorf("%w: title", validation.ErrInvalidInput), messaging.ErrorTypeInvalidInput},
		{errors.New("boom"), messaging.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errorTypeFor(tt.err))
		})
	}
}

func TestVoteButtons(t *testing.T) {
	poll := &models.Poll{
		ID:      "p1",
		Options: []string{"alice", "bob", models.DrawWinnerID},
		Votes:   map[string][]string{"alice": {"owner"}},
	}

	buttons := voteButtons(poll)
	require.Len(t, buttons, 3)

	draw := buttons[2].(discordgo.Button)
	assert.Equal(t, "Draw", draw.Label)
	assert.Equal(t, discordgo.SecondaryButton, draw.Style)
	assert.Equal(t, "ronda:vote:p1:draw", draw.CustomID)

	embed := renderPoll(poll)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "1 votes", embed.Fields[0].Value)
}

func TestRelay(t *testing.T) {
	session := newRecordingSession()
	relay, err := NewRelay(session)
	require.NoError(t, err)

	require.NoError(t, relay.RelayMessage(context.Background(), "chan-9", "alice wins"))
	assert.Equal(t, []string{"alice wins"}, session.sent["chan-9"])

	assert.Error(t, relay.RelayMessage(context.Background(), "", "lost"))

	session.sendErr = errors.New("rate limited")
	assert.ErrorIs(t, relay.RelayMessage(context.Background(), "chan-9", "again"), session.sendErr)

	_, err = NewRelay(nil)
	assert.Error(t, err)
}
