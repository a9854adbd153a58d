package models

import (
	"math"
	"time"
)

// ResolvedRetention is how long resolved bets and duels and open polls are kept
const ResolvedRetention = 24 * time.Hour

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	// BetStatusPending indicates the bet is open for wagers
	BetStatusPending BetStatus = "pending"

	// BetStatusWon indicates the proposition happened and stakers were paid
	BetStatusWon BetStatus = "won"

	// BetStatusLost indicates the proposition failed and stakes were forfeited
	BetStatusLost BetStatus = "lost"

	// BetStatusCancelled indicates the bet was called off and stakes refunded
	BetStatusCancelled BetStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusWon || s == BetStatusLost || s == BetStatusCancelled
}

// IsValidResolution reports whether a bet may be resolved into this status
func (s BetStatus) IsValidResolution() bool {
	return s.IsTerminal()
}

// Bet is a proposition wager with odds
type Bet struct {
	// ID is the unique identifier for the bet
	ID string `json:"id"`

	// RoomID is the room the bet belongs to
	RoomID string `json:"roomId"`

	// Title describes the proposition
	Title string `json:"title"`

	// TargetUserID is the subject of the proposition
	TargetUserID string `json:"targetUserId"`

	// ProposerUserID is the user who opened the bet
	ProposerUserID string `json:"proposerUserId"`

	// Odds is the payout multiplier applied when the bet is won
	Odds float64 `json:"odds"`

	// Deadline is when the proposition should be settled
	Deadline time.Time `json:"deadline"`

	// Status is the current state of the bet
	Status BetStatus `json:"status"`

	// Wagers maps each staker to the amount they staked
	Wagers map[string]int `json:"wagers"`

	// CreatedAt is when the bet was opened
	CreatedAt time.Time `json:"createdAt"`

	// ResolvedAt is the expiry marker set on resolution
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// Payout is the amount credited for a winning stake, rounded down
func (b *Bet) Payout(wager int) int {
	return int(math.Floor(float64(wager) * b.Odds))
}

// TotalStaked sums every recorded wager
func (b *Bet) TotalStaked() int {
	total := 0
	for _, w := range b.Wagers {
		total += w
	}
	return total
}
