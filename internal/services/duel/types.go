package duel

import (
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/KirkDiggler/ronda/internal/services/user"
)

// Config holds the dependencies of the duel service
type Config struct {
	// LedgerRepo runs the credit transactions
	LedgerRepo ledger.Repository

	// ChatService receives vote and outcome announcements
	ChatService chat.Service

	// MessagingService builds announcement texts
	MessagingService messaging.Service

	// UserService names duelists and voters in announcements; optional, IDs
	// are used without it
	UserService user.Service

	// Clock provides the current time
	Clock clock.Clock

	// UUIDGenerator generates duel, poll and message IDs
	UUIDGenerator uuid.UUID

	// Metrics is optional
	Metrics *metrics.Metrics
}

// CreateDuelInput contains parameters for challenging a member to a duel
type CreateDuelInput struct {
	RoomID       string        `validate:"required"`
	Title        string        `validate:"required,max=200"`
	Description  string        `validate:"max=1000"`
	ChallengerID string        `validate:"required"`
	OpponentID   string        `validate:"required"`
	Wager        int           `validate:"gt=0"`
	Duration     time.Duration `validate:"gt=0"`
}

// CreateDuelOutput contains the result of challenging a member to a duel
type CreateDuelOutput struct {
	Duel *models.Duel

	// Balance is the challenger's balance after the wager
	Balance int
}

// AcceptDuelInput contains parameters for accepting a duel
type AcceptDuelInput struct {
	RoomID string `validate:"required"`
	DuelID string `validate:"required"`
	UserID string `validate:"required"`
}

// AcceptDuelOutput contains the result of accepting a duel
type AcceptDuelOutput struct {
	Duel *models.Duel

	// Balance is the opponent's balance after the wager
	Balance int
}

// DeclineDuelInput contains parameters for declining a duel
type DeclineDuelInput struct {
	RoomID string `validate:"required"`
	DuelID string `validate:"required"`
	UserID string `validate:"required"`
}

// DeclineDuelOutput contains the result of declining a duel
type DeclineDuelOutput struct {
	// Duel is the removed duel
	Duel *models.Duel
}

// ResolveDuelInput contains parameters for settling a duel by admin decision
type ResolveDuelInput struct {
	RoomID string `validate:"required"`
	DuelID string `validate:"required"`

	// WinnerID is empty or models.DrawWinnerID for a draw
	WinnerID   string
	ResolvedBy string `validate:"required"`
}

// ResolveDuelOutput contains the result of settling a duel by admin decision
type ResolveDuelOutput struct {
	Duel *models.Duel
}

// InitiateDuelPollInput contains parameters for handing a duel to a room vote
type InitiateDuelPollInput struct {
	RoomID      string `validate:"required"`
	DuelID      string `validate:"required"`
	RequestedBy string `validate:"required"`
}

// InitiateDuelPollOutput contains the result of handing a duel to a room vote
type InitiateDuelPollOutput struct {
	Duel *models.Duel
	Poll *models.Poll
}

// CastVoteInput contains parameters for voting on a duel poll
type CastVoteInput struct {
	RoomID string `validate:"required"`
	PollID string `validate:"required"`
	Option string `validate:"required"`
	UserID string `validate:"required"`
}

// CastVoteOutput contains the result of voting on a duel poll
type CastVoteOutput struct {
	Poll *models.Poll
	Duel *models.Duel

	// Accepted is false when the user had already voted
	Accepted bool

	// Resolved is true when this vote reached the majority
	Resolved bool
}

// GetDuelInput contains parameters for fetching a duel
type GetDuelInput struct {
	RoomID string `validate:"required"`
	DuelID string `validate:"required"`
}

// GetDuelOutput contains the result of fetching a duel
type GetDuelOutput struct {
	Duel *models.Duel
}

// ListDuelsInput contains parameters for listing a room's duels
type ListDuelsInput struct {
	RoomID string `validate:"required"`
}

// ListDuelsOutput contains the result of listing a room's duels
type ListDuelsOutput struct {
	Duels []*models.Duel
}

// ListPollsInput contains parameters for listing a room's open polls
type ListPollsInput struct {
	RoomID string `validate:"required"`
}

// ListPollsOutput contains the result of listing a room's open polls
type ListPollsOutput struct {
	Polls []*models.Poll
}

// EscalateExpiredDuelsInput contains parameters for sweeping overdue duels
type EscalateExpiredDuelsInput struct {
	// RoomID limits the sweep to one room; empty sweeps every room
	RoomID string
}

// EscalateExpiredDuelsOutput contains the polls opened by one sweep
type EscalateExpiredDuelsOutput struct {
	// Polls are the polls opened by this sweep
	Polls []*models.Poll

	// Skipped counts overdue duels left alone because the room admin is not
	// one of the duelists
	Skipped int
}
