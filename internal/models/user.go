package models

import "time"

// User is a member's profile. Membership and credits live on the Room.
type User struct {
	// ID is the user's identity, the same ID rooms store as members
	ID string `json:"id"`

	// Username is the display name shown in chat and on leaderboards
	Username string `json:"username,omitempty"`

	// Age is self-reported
	Age int `json:"age,omitempty"`

	// PhotoURL points at the profile picture
	PhotoURL string `json:"photoUrl,omitempty"`

	HasAcceptedPolicy   bool `json:"hasAcceptedPolicy"`
	HasCompletedProfile bool `json:"hasCompletedProfile"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName is the username, or the ID for users without one
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username == "" {
		return u.ID
	}
	return u.Username
}
