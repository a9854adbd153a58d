package models

import "time"

// Poll collects room votes on the outcome of a duel
type Poll struct {
	// ID is the unique identifier for the poll
	ID string `json:"id"`

	// RoomID is the room the poll belongs to
	RoomID string `json:"roomId"`

	// DuelID is the duel being decided
	DuelID string `json:"duelId"`

	// Question is shown to voters
	Question string `json:"question"`

	// Options are the valid choices: challenger, opponent and draw
	Options []string `json:"options"`

	// Votes maps each option to the users who picked it
	Votes map[string][]string `json:"votes"`

	// MemberCountAtCreation is the fixed denominator for the majority
	MemberCountAtCreation int `json:"memberCountAtCreation"`

	// CreatedAt is when the poll was opened
	CreatedAt time.Time `json:"createdAt"`

	// ExpiresAt is when an undecided poll is discarded
	ExpiresAt time.Time `json:"expiresAt"`
}

// MajorityThreshold is the vote count an option needs to win
func (p *Poll) MajorityThreshold() int {
	return p.MemberCountAtCreation/2 + 1
}

// HasOption reports whether the option can be voted for
func (p *Poll) HasOption(option string) bool {
	for _, o := range p.Options {
		if o == option {
			return true
		}
	}
	return false
}

// HasVoted reports whether the user already appears under any option
func (p *Poll) HasVoted(userID string) bool {
	for _, voters := range p.Votes {
		for _, v := range voters {
			if v == userID {
				return true
			}
		}
	}
	return false
}

// AddVote records the user's vote. Returns false without changes if the user
// has already voted.
func (p *Poll) AddVote(option, userID string) bool {
	if p.HasVoted(userID) {
		return false
	}
	if p.Votes == nil {
		p.Votes = make(map[string][]string)
	}
	p.Votes[option] = append(p.Votes[option], userID)
	return true
}

// ReachedMajority reports whether the option has enough votes to decide the poll
func (p *Poll) ReachedMajority(option string) bool {
	return len(p.Votes[option]) >= p.MajorityThreshold()
}
