package room

import (
	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
)

// inviteCodeLength is the number of characters in an invite code
const inviteCodeLength = 6

// maxInviteAttempts bounds how many invite codes are tried before giving up
const maxInviteAttempts = 5

// DefaultDrinks seeds the catalog of every new room
var DefaultDrinks = []models.Drink{
	{ID: "beer", Name: "Beer", Points: 1, Emoji: "🍺"},
	{ID: "wine", Name: "Wine", Points: 2, Emoji: "🍷"},
	{ID: "cocktail", Name: "Cocktail", Points: 2, Emoji: "🍹"},
	{ID: "shot", Name: "Shot", Points: 3, Emoji: "🥃"},
}

// Config holds the dependencies of the room service
type Config struct {
	// LedgerRepo stores rooms
	LedgerRepo ledger.Repository

	// Clock provides the current time
	Clock clock.Clock

	// UUIDGenerator generates room IDs and invite codes
	UUIDGenerator uuid.UUID

	// Metrics is optional
	Metrics *metrics.Metrics
}

// CreateRoomInput contains parameters for creating a room
type CreateRoomInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	PhotoURL    string `validate:"omitempty,url"`
	OwnerID     string `validate:"required"`

	// ChannelID links the room to a Discord channel
	ChannelID string
}

// CreateRoomOutput contains the result of creating a room
type CreateRoomOutput struct {
	Room *models.Room
}

// JoinRoomInput identifies the room by RoomID or InviteCode
type JoinRoomInput struct {
	RoomID     string
	InviteCode string
	UserID     string `validate:"required"`
}

// JoinRoomOutput contains the result of joining a room
type JoinRoomOutput struct {
	Room *models.Room

	// AlreadyMember is true when the user was in the room before the call
	AlreadyMember bool
}

// LeaveRoomInput contains parameters for leaving a room
type LeaveRoomInput struct {
	RoomID string `validate:"required"`
	UserID string `validate:"required"`
}

// LeaveRoomOutput contains the result of leaving a room
type LeaveRoomOutput struct {
	// Left is false when the user was not a member
	Left bool
}

// GetRoomInput contains parameters for fetching a room
type GetRoomInput struct {
	RoomID string `validate:"required"`
}

// GetRoomByChannelInput contains parameters for finding the room linked to a Discord channel
type GetRoomByChannelInput struct {
	ChannelID string `validate:"required"`
}

// GetRoomOutput contains the result of fetching a room
type GetRoomOutput struct {
	Room *models.Room
}

// ListRoomsInput contains parameters for listing a user's rooms
type ListRoomsInput struct {
	UserID string `validate:"required"`
}

// ListRoomsOutput contains the result of listing a user's rooms
type ListRoomsOutput struct {
	Rooms []*models.Room
}

// UpdateDrinksInput contains parameters for replacing a room's drink catalog
type UpdateDrinksInput struct {
	RoomID  string         `validate:"required"`
	ActorID string         `validate:"required"`
	Drinks  []models.Drink `validate:"dive"`
}

// UpdateDrinksOutput contains the result of replacing a room's drink catalog
type UpdateDrinksOutput struct {
	Room *models.Room
}

// AddDrinkInput contains parameters for logging a drink
type AddDrinkInput struct {
	RoomID  string `validate:"required"`
	UserID  string `validate:"required"`
	DrinkID string `validate:"required"`
}

// AddDrinkOutput contains the result of logging a drink
type AddDrinkOutput struct {
	// Count is the user's new tally for the drink
	Count int

	// Score is the user's new leaderboard score
	Score int
}

// GetLeaderboardInput contains parameters for ranking a room's members
type GetLeaderboardInput struct {
	RoomID string `validate:"required"`
}

// GetLeaderboardOutput contains the result of ranking a room's members
type GetLeaderboardOutput struct {
	Entries []*models.LeaderboardEntry
}

// GetBalanceInput contains parameters for reading a member's balance
type GetBalanceInput struct {
	RoomID string `validate:"required"`
	UserID string `validate:"required"`
}

// GetBalanceOutput contains the result of reading a member's balance
type GetBalanceOutput struct {
	Balance int
}
