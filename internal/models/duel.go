package models

import "time"

// DuelStatus represents the lifecycle state of a duel
type DuelStatus string

const (
	// DuelStatusAwaitingAcceptance indicates the opponent has not answered yet
	DuelStatusAwaitingAcceptance DuelStatus = "awaiting_acceptance"

	// DuelStatusInProgress indicates both stakes are locked in
	DuelStatusInProgress DuelStatus = "in_progress"

	// DuelStatusInPoll indicates the room is voting on the outcome
	DuelStatusInPoll DuelStatus = "in_poll"

	// DuelStatusResolved indicates the duel has been paid out
	DuelStatusResolved DuelStatus = "resolved"
)

// DrawWinnerID is stored as the winner of a tied duel
const DrawWinnerID = "draw"

// Duel is a symmetric 1v1 wager
type Duel struct {
	// ID is the unique identifier for the duel
	ID string `json:"id"`

	// RoomID is the room the duel belongs to
	RoomID string `json:"roomId"`

	// Title describes the challenge
	Title string `json:"title"`

	// Description holds optional extra rules
	Description string `json:"description,omitempty"`

	// ChallengerID is the user who issued the challenge
	ChallengerID string `json:"challengerId"`

	// OpponentID is the user who was challenged
	OpponentID string `json:"opponentId"`

	// Wager is the stake each side puts up
	Wager int `json:"wager"`

	// StartTime is when the duel started
	StartTime time.Time `json:"startTime"`

	// EndTime is when the duel is due to be decided
	EndTime time.Time `json:"endTime"`

	// Status is the current state of the duel
	Status DuelStatus `json:"status"`

	// WinnerID is the winning user, or DrawWinnerID for a tie
	WinnerID string `json:"winnerId,omitempty"`

	// PollID is the poll deciding the duel, while one is open
	PollID string `json:"pollId,omitempty"`

	// ResolvedAt is the expiry marker set on resolution
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// IsParticipant reports whether the user is one of the two sides
func (d *Duel) IsParticipant(userID string) bool {
	return userID == d.ChallengerID || userID == d.OpponentID
}

// IsExpired reports whether an in-progress duel has run past its end time
func (d *Duel) IsExpired(now time.Time) bool {
	return d.Status == DuelStatusInProgress && !d.EndTime.IsZero() && now.After(d.EndTime)
}

// Settle pays out the duel on the given room. An empty winnerID or
// DrawWinnerID refunds both stakes; otherwise the winner takes both.
// It returns the stored winner ID.
func (d *Duel) Settle(room *Room, winnerID string) string {
	if winnerID == "" || winnerID == DrawWinnerID {
		room.Credit(d.ChallengerID, d.Wager)
		room.Credit(d.OpponentID, d.Wager)
		return DrawWinnerID
	}
	room.Credit(winnerID, d.Wager*2)
	return winnerID
}
