package models

import (
	"sort"
	"time"
)

// EventDrinkEntry is a drink logged during an event
type EventDrinkEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	DrinkID   string    `json:"drinkId"`
	Timestamp time.Time `json:"timestamp"`
}

// Event is a scheduled outing within a room
type Event struct {
	// ID is the unique identifier for the event
	ID string `json:"id"`

	// RoomID is the room hosting the event
	RoomID string `json:"roomId"`

	// Title is the display name of the event
	Title string `json:"title"`

	// Description is optional text
	Description string `json:"description,omitempty"`

	// StartDate is when the event begins
	StartDate time.Time `json:"startDate"`

	// EndDate is when the event ends
	EndDate time.Time `json:"endDate"`

	// Participants lists the invited users
	Participants []string `json:"participants"`

	// Color is a hex color used by clients, e.g. "#FF8800"
	Color string `json:"color,omitempty"`

	// DrinksConsumed are the drinks logged during the event
	DrinksConsumed []EventDrinkEntry `json:"drinksConsumed"`
}

// IsActive reports whether now falls within the event
func (e *Event) IsActive(now time.Time) bool {
	return !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// EventScore is one user's drink count during an event
type EventScore struct {
	UserID string `json:"userId"`

	// Name is the user's display name
	Name   string `json:"name"`
	Drinks int    `json:"drinks"`
}

// DrinkTally counts how often one drink was logged
type DrinkTally struct {
	DrinkID string `json:"drinkId"`

	// Name and Emoji come from the room catalog and are empty for drinks
	// removed since
	Name  string `json:"name,omitempty"`
	Emoji string `json:"emoji,omitempty"`
	Count int    `json:"count"`
}

// PersonalRewind is one user's share of an event
type PersonalRewind struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Drinks int    `json:"drinks"`

	// FavoriteDrink is the drink the user logged most
	FavoriteDrink *DrinkTally `json:"favoriteDrink,omitempty"`
}

// EventRewind is the recap of an event
type EventRewind struct {
	EventID     string `json:"eventId"`
	Title       string `json:"title"`
	TotalDrinks int    `json:"totalDrinks"`

	// MostPopularDrink is nil when nothing was logged
	MostPopularDrink *DrinkTally `json:"mostPopularDrink,omitempty"`

	// TopPlayers is the head of the event leaderboard
	TopPlayers []EventScore `json:"topPlayers"`

	// Personal is nil when the requesting user logged nothing
	Personal *PersonalRewind `json:"personal,omitempty"`
}

// Scores counts drinks per user, most drinks first. Ties keep the order in
// which users logged their first drink.
func (e *Event) Scores() []EventScore {
	counts := countBy(e.DrinksConsumed, func(entry EventDrinkEntry) string { return entry.UserID })

	scores := make([]EventScore, len(counts))
	for i, c := range counts {
		scores[i] = EventScore{UserID: c.key, Name: c.key, Drinks: c.count}
	}
	return scores
}

// DrinkTallies counts each drink logged by userID, or by everyone when
// userID is empty, most logged first. Ties keep first-logged order.
func (e *Event) DrinkTallies(userID string) []DrinkTally {
	entries := e.DrinksConsumed
	if userID != "" {
		entries = make([]EventDrinkEntry, 0, len(e.DrinksConsumed))
		for _, entry := range e.DrinksConsumed {
			if entry.UserID == userID {
				entries = append(entries, entry)
			}
		}
	}

	counts := countBy(entries, func(entry EventDrinkEntry) string { return entry.DrinkID })

	tallies := make([]DrinkTally, len(counts))
	for i, c := range counts {
		tallies[i] = DrinkTally{DrinkID: c.key, Count: c.count}
	}
	return tallies
}

type keyCount struct {
	key   string
	count int
}

func countBy(entries []EventDrinkEntry, key func(EventDrinkEntry) string) []keyCount {
	index := make(map[string]int)
	counts := make([]keyCount, 0)
	for _, entry := range entries {
		k := key(entry)
		i, ok := index[k]
		if !ok {
			i = len(counts)
			index[k] = i
			counts = append(counts, keyCount{key: k})
		}
		counts[i].count++
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	return counts
}
