package models

import (
	"fmt"
	"time"
)

// StartingCredits is the balance every member receives when they first join a room
const StartingCredits = 10000

// SystemUserID is the author of automated chat messages and watcher actions
const SystemUserID = "system"

// Drink is an entry in a room's drink catalog
type Drink struct {
	// ID is the unique identifier for the drink within the room
	ID string `json:"id" validate:"required"`

	// Name is the display name of the drink
	Name string `json:"name" validate:"required"`

	// Points is how much one drink is worth on the leaderboard
	Points int `json:"points" validate:"gte=0"`

	// Emoji is an optional icon for the drink
	Emoji string `json:"emoji,omitempty"`
}

// Room is a group container holding membership, the drink catalog, the
// consumption tally and the credit ledger.
type Room struct {
	// ID is the unique identifier for the room
	ID string `json:"id"`

	// Title is the display name of the room
	Title string `json:"title"`

	// Description is an optional blurb
	Description string `json:"description,omitempty"`

	// PhotoURL points to the room picture in object storage
	PhotoURL string `json:"photoUrl,omitempty"`

	// OwnerID is the user who created the room and its only administrator
	OwnerID string `json:"ownerId"`

	// MemberIDs contains the users in the room, in join order
	MemberIDs []string `json:"memberIds"`

	// InviteCode is the short code other users join with
	InviteCode string `json:"inviteCode"`

	// ChannelID is the Discord channel linked to the room, if any
	ChannelID string `json:"channelId,omitempty"`

	// Drinks is the room's drink catalog
	Drinks []Drink `json:"drinks"`

	// Scores counts drinks per user: userID -> drinkID -> count
	Scores map[string]map[string]int `json:"scores"`

	// UserCredits is the spendable wager balance of every member
	UserCredits map[string]int `json:"userCredits"`

	// CreatedAt is when the room was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the room was last written
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsMember reports whether the user belongs to the room
func (r *Room) IsMember(userID string) bool {
	for _, id := range r.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsOwner reports whether the user administers the room
func (r *Room) IsOwner(userID string) bool {
	return userID != "" && r.OwnerID == userID
}

// AddMember adds the user to the room. Users joining for the first time get
// StartingCredits; returning members keep the balance they left with.
// Returns false if the user was already a member.
func (r *Room) AddMember(userID string) bool {
	if r.IsMember(userID) {
		return false
	}
	r.MemberIDs = append(r.MemberIDs, userID)
	if r.UserCredits == nil {
		r.UserCredits = make(map[string]int)
	}
	if _, ok := r.UserCredits[userID]; !ok {
		r.UserCredits[userID] = StartingCredits
	}
	return true
}

// RemoveMember removes the user from the member list. The balance stays so a
// rejoin restores it.
func (r *Room) RemoveMember(userID string) bool {
	kept := make([]string, 0, len(r.MemberIDs))
	found := false
	for _, id := range r.MemberIDs {
		if id == userID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	r.MemberIDs = kept
	return found
}

// Balance returns the user's spendable credits
func (r *Room) Balance(userID string) int {
	return r.UserCredits[userID]
}

// Deduct removes amount from the user's balance. It must only be called on a
// room read inside a ledger transaction.
func (r *Room) Deduct(userID string, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	balance := r.UserCredits[userID]
	if balance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientCredits, userID, balance, amount)
	}
	r.UserCredits[userID] = balance - amount
	return nil
}

// Credit adds amount to the user's balance. No upper bound is enforced.
func (r *Room) Credit(userID string, amount int) {
	if amount <= 0 {
		return
	}
	if r.UserCredits == nil {
		r.UserCredits = make(map[string]int)
	}
	r.UserCredits[userID] += amount
}

// TotalCredits sums every balance in the room
func (r *Room) TotalCredits() int {
	total := 0
	for _, c := range r.UserCredits {
		total += c
	}
	return total
}

// FindDrink returns the catalog entry with the given ID
func (r *Room) FindDrink(drinkID string) (Drink, bool) {
	for _, d := range r.Drinks {
		if d.ID == drinkID {
			return d, true
		}
	}
	return Drink{}, false
}

// AddScore records that the user had one more of the given drink
func (r *Room) AddScore(userID, drinkID string) {
	if r.Scores == nil {
		r.Scores = make(map[string]map[string]int)
	}
	if r.Scores[userID] == nil {
		r.Scores[userID] = make(map[string]int)
	}
	r.Scores[userID][drinkID]++
}

// Score computes a user's leaderboard points from the drink catalog
func (r *Room) Score(userID string) int {
	total := 0
	for drinkID, count := range r.Scores[userID] {
		if d, ok := r.FindDrink(drinkID); ok {
			total += count * d.Points
		}
	}
	return total
}
