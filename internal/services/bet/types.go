package bet

import (
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
)

// Config holds the dependencies of the bet service
type Config struct {
	// LedgerRepo runs the credit transactions
	LedgerRepo ledger.Repository

	// ChatService receives outcome announcements
	ChatService chat.Service

	// MessagingService builds announcement texts
	MessagingService messaging.Service

	// Clock provides the current time
	Clock clock.Clock

	// UUIDGenerator generates bet IDs
	UUIDGenerator uuid.UUID

	// Metrics is optional
	Metrics *metrics.Metrics
}

// CreateBetInput contains parameters for proposing a bet
type CreateBetInput struct {
	RoomID         string    `validate:"required"`
	Title          string    `validate:"required,max=200"`
	TargetUserID   string    `validate:"required"`
	ProposerUserID string    `validate:"required"`
	Odds           float64   `validate:"gt=1"`
	Deadline       time.Time `validate:"required"`
	Stake          int       `validate:"gt=0"`
}

// CreateBetOutput contains the result of proposing a bet
type CreateBetOutput struct {
	Bet *models.Bet

	// Balance is the proposer's balance after the stake
	Balance int
}

// PlaceWagerInput contains parameters for staking on a bet
type PlaceWagerInput struct {
	RoomID string `validate:"required"`
	BetID  string `validate:"required"`
	UserID string `validate:"required"`
	Amount int    `validate:"gt=0"`
}

// PlaceWagerOutput contains the result of staking on a bet
type PlaceWagerOutput struct {
	Bet *models.Bet

	// Balance is the user's balance after the stake
	Balance int
}

// ResolveBetInput contains parameters for settling a bet
type ResolveBetInput struct {
	RoomID     string           `validate:"required"`
	BetID      string           `validate:"required"`
	Status     models.BetStatus `validate:"required"`
	ResolvedBy string           `validate:"required"`
}

// ResolveBetOutput contains the result of settling a bet
type ResolveBetOutput struct {
	Bet *models.Bet

	// Payouts maps each staker to the amount credited
	Payouts map[string]int

	// TotalPaid is the sum of Payouts
	TotalPaid int
}

// GetBetInput contains parameters for fetching a bet
type GetBetInput struct {
	RoomID string `validate:"required"`
	BetID  string `validate:"required"`
}

// GetBetOutput contains the result of fetching a bet
type GetBetOutput struct {
	Bet *models.Bet
}

// ListBetsInput contains parameters for listing a room's bets
type ListBetsInput struct {
	RoomID string `validate:"required"`
}

// ListBetsOutput contains the result of listing a room's bets
type ListBetsOutput struct {
	Bets []*models.Bet
}
