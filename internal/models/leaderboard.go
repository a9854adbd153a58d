package models

// LeaderboardEntry is one member's standing in a room
type LeaderboardEntry struct {
	// UserID is the member
	UserID string `json:"userId"`

	// Score is the sum of drink counts weighted by drink points
	Score int `json:"score"`

	// Credits is the member's current balance
	Credits int `json:"credits"`

	// DrinkCounts is the member's tally per drink
	DrinkCounts map[string]int `json:"drinkCounts"`
}
