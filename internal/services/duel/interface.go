package duel

//go:generate mockgen -package=mocks -destination=mocks/mock_escalator.go github.com/KirkDiggler/ronda/internal/services/duel Escalator

import "context"

// Service defines the interface for the duel ledger
type Service interface {
	Escalator

	// CreateDuel challenges another member and deducts the challenger's wager
	CreateDuel(ctx context.Context, input *CreateDuelInput) (*CreateDuelOutput, error)

	// AcceptDuel locks in the opponent's wager and starts the clock
	AcceptDuel(ctx context.Context, input *AcceptDuelInput) (*AcceptDuelOutput, error)

	// DeclineDuel refunds the challenger and removes the duel
	DeclineDuel(ctx context.Context, input *DeclineDuelInput) (*DeclineDuelOutput, error)

	// ResolveDuel pays out a duel on the admin's say-so
	ResolveDuel(ctx context.Context, input *ResolveDuelInput) (*ResolveDuelOutput, error)

	// InitiateDuelPoll hands the decision to a room vote
	InitiateDuelPoll(ctx context.Context, input *InitiateDuelPollInput) (*InitiateDuelPollOutput, error)

	// CastVote records a member's vote and resolves the duel on a majority
	CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error)

	// GetDuel retrieves a duel
	GetDuel(ctx context.Context, input *GetDuelInput) (*GetDuelOutput, error)

	// ListDuels retrieves a room's duels
	ListDuels(ctx context.Context, input *ListDuelsInput) (*ListDuelsOutput, error)

	// ListPolls retrieves a room's open polls
	ListPolls(ctx context.Context, input *ListPollsInput) (*ListPollsOutput, error)
}

// Escalator moves overdue duels into a poll
type Escalator interface {
	// EscalateExpiredDuels opens a poll for every in-progress duel past its end time
	EscalateExpiredDuels(ctx context.Context, input *EscalateExpiredDuelsInput) (*EscalateExpiredDuelsOutput, error)
}
