package ledger

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/ronda/internal/repositories/ledger Repository

import (
	"context"

	"github.com/KirkDiggler/ronda/internal/models"
)

// Repository defines persistence for rooms and the ledger documents that hang
// off them: bets, duels and polls.
type Repository interface {
	// RunTransaction executes the input's Apply function atomically. Every
	// document read through the transaction is watched; if any of them changes
	// before commit the whole function is re-run.
	RunTransaction(ctx context.Context, input *RunTransactionInput) error

	// CreateRoom persists a new room and claims its invite code
	CreateRoom(ctx context.Context, input *CreateRoomInput) error

	// GetRoom retrieves a room by ID
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error)

	// GetRoomByInviteCode retrieves the room an invite code belongs to
	GetRoomByInviteCode(ctx context.Context, input *GetRoomByInviteCodeInput) (*models.Room, error)

	// GetRoomByChannel retrieves the room linked to a Discord channel
	GetRoomByChannel(ctx context.Context, input *GetRoomByChannelInput) (*models.Room, error)

	// ListRoomsForUser retrieves every room the user is a member of
	ListRoomsForUser(ctx context.Context, input *ListRoomsForUserInput) (*ListRoomsForUserOutput, error)

	// GetBet retrieves a bet by ID
	GetBet(ctx context.Context, input *GetBetInput) (*models.Bet, error)

	// ListBets retrieves a room's bets, oldest first
	ListBets(ctx context.Context, input *ListBetsInput) (*ListBetsOutput, error)

	// GetDuel retrieves a duel by ID
	GetDuel(ctx context.Context, input *GetDuelInput) (*models.Duel, error)

	// ListDuels retrieves a room's duels, oldest first
	ListDuels(ctx context.Context, input *ListDuelsInput) (*ListDuelsOutput, error)

	// ListExpiredDuels retrieves in-progress duels whose end time is before the given time
	ListExpiredDuels(ctx context.Context, input *ListExpiredDuelsInput) (*ListExpiredDuelsOutput, error)

	// GetPoll retrieves a poll by ID
	GetPoll(ctx context.Context, input *GetPollInput) (*models.Poll, error)

	// ListPolls retrieves a room's open polls, oldest first
	ListPolls(ctx context.Context, input *ListPollsInput) (*ListPollsOutput, error)

	// Subscribe streams change notices for a room until the context is done
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)
}

// Transaction is the view of the store available inside RunTransaction.
// Reads must happen before the function returns; writes are buffered and
// committed together.
type Transaction interface {
	// GetRoom reads and watches a room
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)

	// GetBet reads and watches a bet
	GetBet(ctx context.Context, roomID, betID string) (*models.Bet, error)

	// GetDuel reads and watches a duel
	GetDuel(ctx context.Context, roomID, duelID string) (*models.Duel, error)

	// GetPoll reads and watches a poll
	GetPoll(ctx context.Context, roomID, pollID string) (*models.Poll, error)

	// SaveRoom queues a room write
	SaveRoom(room *models.Room)

	// SaveBet queues a bet write
	SaveBet(bet *models.Bet)

	// SaveDuel queues a duel write
	SaveDuel(duel *models.Duel)

	// DeleteDuel queues a duel removal
	DeleteDuel(roomID, duelID string)

	// SavePoll queues a poll write
	SavePoll(poll *models.Poll)

	// DeletePoll queues a poll removal
	DeletePoll(roomID, pollID string)

	// AddMessage queues a chat message write
	AddMessage(message *models.Message)

	// AddCheckIn queues a check-in write
	AddCheckIn(checkIn *models.CheckIn)
}
