package models

import "time"

// ChangeKind identifies which part of a room changed
type ChangeKind string

const (
	ChangeKindRoom     ChangeKind = "room"
	ChangeKindBets     ChangeKind = "bets"
	ChangeKindDuels    ChangeKind = "duels"
	ChangeKindPolls    ChangeKind = "polls"
	ChangeKindMessages ChangeKind = "messages"
	ChangeKindCheckIns ChangeKind = "checkins"
	ChangeKindEvents   ChangeKind = "events"
)

// ChangeNotice is published whenever a room's documents are committed
type ChangeNotice struct {
	RoomID string       `json:"roomId"`
	Kinds  []ChangeKind `json:"kinds"`
}

// RoomSnapshot is the full current state pushed to subscribers. Each snapshot
// replaces the previous one.
type RoomSnapshot struct {
	Room      *Room        `json:"room"`
	Bets      []*Bet       `json:"bets"`
	Duels     []*Duel      `json:"duels"`
	Polls     []*Poll      `json:"polls"`
	Kinds     []ChangeKind `json:"kinds,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
