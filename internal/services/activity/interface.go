package activity

import "context"

// Service covers the social side of a room: drink check-ins and events
type Service interface {
	// CheckIn posts a drink check-in and counts it on the leaderboard
	CheckIn(ctx context.Context, input *CheckInInput) (*CheckInOutput, error)

	// ListCheckIns retrieves a room's live check-ins, newest first
	ListCheckIns(ctx context.Context, input *ListCheckInsInput) (*ListCheckInsOutput, error)

	// CreateEvent schedules an event in a room
	CreateEvent(ctx context.Context, input *CreateEventInput) (*CreateEventOutput, error)

	// ListEvents retrieves a room's events by start date
	ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error)

	// GetActiveEvent retrieves the most recently started event that is still running
	GetActiveEvent(ctx context.Context, input *GetActiveEventInput) (*GetActiveEventOutput, error)

	// LogEventDrink records a drink against a running event
	LogEventDrink(ctx context.Context, input *LogEventDrinkInput) (*LogEventDrinkOutput, error)

	// GetEvent retrieves one event
	GetEvent(ctx context.Context, input *GetEventInput) (*GetEventOutput, error)

	// GetEventLeaderboard ranks users by the drinks they logged during an event
	GetEventLeaderboard(ctx context.Context, input *GetEventLeaderboardInput) (*GetEventLeaderboardOutput, error)

	// GetEventRewind builds the recap of an event for one user
	GetEventRewind(ctx context.Context, input *GetEventRewindInput) (*GetEventRewindOutput, error)
}
