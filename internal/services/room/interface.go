package room

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/ronda/internal/services/room Service

import "context"

// Service defines the interface for room operations
type Service interface {
	// CreateRoom creates a room owned by the caller
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// JoinRoom adds a user to a room by ID or invite code
	JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error)

	// LeaveRoom removes a member from a room
	LeaveRoom(ctx context.Context, input *LeaveRoomInput) (*LeaveRoomOutput, error)

	// GetRoom retrieves a room
	GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error)

	// GetRoomByChannel retrieves the room linked to a Discord channel
	GetRoomByChannel(ctx context.Context, input *GetRoomByChannelInput) (*GetRoomOutput, error)

	// ListRooms retrieves the rooms a user belongs to
	ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error)

	// UpdateDrinks replaces the room's drink catalog
	UpdateDrinks(ctx context.Context, input *UpdateDrinksInput) (*UpdateDrinksOutput, error)

	// AddDrink records one drink for a member
	AddDrink(ctx context.Context, input *AddDrinkInput) (*AddDrinkOutput, error)

	// GetLeaderboard ranks members by drink points
	GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error)

	// GetBalance returns a member's spendable credits
	GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error)
}
