package ledger

import (
	"context"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
)

// RunTransactionInput contains the body of a transaction
type RunTransactionInput struct {
	// Apply reads and mutates documents through tx. It may run more than once
	// when a conflicting write is detected, so it must not keep state between
	// calls. Returning an error aborts the transaction without writing.
	Apply func(ctx context.Context, tx Transaction) error
}

// CreateRoomInput contains parameters for storing a new room
type CreateRoomInput struct {
	Room *models.Room
}

// GetRoomInput contains parameters for reading a room
type GetRoomInput struct {
	RoomID string
}

// GetRoomByInviteCodeInput contains parameters for resolving an invite code
type GetRoomByInviteCodeInput struct {
	InviteCode string
}

// GetRoomByChannelInput contains parameters for resolving a Discord channel
type GetRoomByChannelInput struct {
	ChannelID string
}

// ListRoomsForUserInput contains parameters for listing a user's rooms
type ListRoomsForUserInput struct {
	UserID string
}

// ListRoomsForUserOutput contains the result of listing a user's rooms
type ListRoomsForUserOutput struct {
	Rooms []*models.Room
}

// GetBetInput contains parameters for reading a bet
type GetBetInput struct {
	RoomID string
	BetID  string
}

// ListBetsInput contains parameters for listing a room's bets
type ListBetsInput struct {
	RoomID string
}

// ListBetsOutput contains the result of listing a room's bets
type ListBetsOutput struct {
	Bets []*models.Bet
}

// GetDuelInput contains parameters for reading a duel
type GetDuelInput struct {
	RoomID string
	DuelID string
}

// ListDuelsInput contains parameters for listing a room's duels
type ListDuelsInput struct {
	RoomID string
}

// ListDuelsOutput contains the result of listing a room's duels
type ListDuelsOutput struct {
	Duels []*models.Duel
}

// ListExpiredDuelsInput contains parameters for finding overdue duels
type ListExpiredDuelsInput struct {
	Before time.Time
}

// ListExpiredDuelsOutput contains the result of finding overdue duels
type ListExpiredDuelsOutput struct {
	Duels []*models.Duel
}

// GetPollInput contains parameters for reading a poll
type GetPollInput struct {
	RoomID string
	PollID string
}

// ListPollsInput contains parameters for listing a room's polls
type ListPollsInput struct {
	RoomID string
}

// ListPollsOutput contains the result of listing a room's polls
type ListPollsOutput struct {
	Polls []*models.Poll
}

// SubscribeInput contains parameters for subscribing to a room's change notices
type SubscribeInput struct {
	RoomID string
}

// SubscribeOutput carries a room's change notices. Notices is closed when the
// subscription ends.
type SubscribeOutput struct {
	Notices <-chan *models.ChangeNotice

	// Close ends the subscription early
	Close func() error
}
