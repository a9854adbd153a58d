package bet

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/ronda/internal/services/bet Service

import "context"

// Service defines the interface for the bet ledger
type Service interface {
	// CreateBet opens a bet and deducts the proposer's stake
	CreateBet(ctx context.Context, input *CreateBetInput) (*CreateBetOutput, error)

	// PlaceWager records a member's stake on a pending bet
	PlaceWager(ctx context.Context, input *PlaceWagerInput) (*PlaceWagerOutput, error)

	// ResolveBet settles a pending bet and pays out
	ResolveBet(ctx context.Context, input *ResolveBetInput) (*ResolveBetOutput, error)

	// GetBet retrieves a bet
	GetBet(ctx context.Context, input *GetBetInput) (*GetBetOutput, error)

	// ListBets retrieves a room's bets
	ListBets(ctx context.Context, input *ListBetsInput) (*ListBetsOutput, error)
}
