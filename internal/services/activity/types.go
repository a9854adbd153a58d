package activity

import (
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/checkin"
	"github.com/KirkDiggler/ronda/internal/repositories/event"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/user"
)

// rewindTopPlayers is how many users make the rewind podium
const rewindTopPlayers = 3

// Config holds the dependencies of the activity service
type Config struct {
	// LedgerRepo writes check-ins together with the room's tally
	LedgerRepo ledger.Repository

	// CheckInRepo reads check-ins
	CheckInRepo checkin.Repository

	// EventRepo stores events
	EventRepo event.Repository

	// Clock provides the current time
	Clock clock.Clock

	// UUIDGenerator generates check-in, event and entry IDs
	UUIDGenerator uuid.UUID

	// UserService names users on event leaderboards; optional, IDs are used
	// without it
	UserService user.Service

	// Metrics is optional
	Metrics *metrics.Metrics
}

// CheckInInput contains parameters for posting a drink check-in
type CheckInInput struct {
	RoomID   string           `validate:"required"`
	UserID   string           `validate:"required"`
	DrinkID  string           `validate:"required"`
	Caption  string           `validate:"max=280"`
	PhotoURL string           `validate:"omitempty,url"`
	Location *models.GeoPoint `validate:"omitempty"`
}

// CheckInOutput contains the result of posting a drink check-in
type CheckInOutput struct {
	CheckIn *models.CheckIn

	// Score is the user's leaderboard score after the check-in
	Score int
}

// ListCheckInsInput contains parameters for listing a room's check-ins
type ListCheckInsInput struct {
	RoomID string `validate:"required"`
}

// ListCheckInsOutput contains the result of listing a room's check-ins
type ListCheckInsOutput struct {
	CheckIns []*models.CheckIn
}

// CreateEventInput contains parameters for scheduling an event
type CreateEventInput struct {
	RoomID      string    `validate:"required"`
	CreatedBy   string    `validate:"required"`
	Title       string    `validate:"required,max=100"`
	Description string    `validate:"max=500"`
	StartDate   time.Time `validate:"required"`
	EndDate     time.Time `validate:"required,gtfield=StartDate"`

	// Participants defaults to the creator
	Participants []string
	Color        string `validate:"hexcolor_opt"`
}

// CreateEventOutput contains the result of scheduling an event
type CreateEventOutput struct {
	Event *models.Event
}

// ListEventsInput contains parameters for listing a room's events
type ListEventsInput struct {
	RoomID string `validate:"required"`
}

// ListEventsOutput contains the result of listing a room's events
type ListEventsOutput struct {
	Events []*models.Event
}

// GetActiveEventInput contains parameters for finding the running event
type GetActiveEventInput struct {
	RoomID string `validate:"required"`
}

// GetActiveEventOutput contains the result of finding the running event
type GetActiveEventOutput struct {
	Event *models.Event
}

// LogEventDrinkInput contains parameters for logging a drink during an event
type LogEventDrinkInput struct {
	RoomID  string `validate:"required"`
	EventID string `validate:"required"`
	UserID  string `validate:"required"`
	DrinkID string `validate:"required"`
}

// LogEventDrinkOutput contains the result of logging a drink during an event
type LogEventDrinkOutput struct {
	Event *models.Event
	Entry models.EventDrinkEntry
}

// GetEventInput identifies an event
type GetEventInput struct {
	RoomID  string `validate:"required"`
	EventID string `validate:"required"`
}

// GetEventOutput contains the event
type GetEventOutput struct {
	Event *models.Event
}

// GetEventLeaderboardInput identifies the event to rank
type GetEventLeaderboardInput struct {
	RoomID  string `validate:"required"`
	EventID string `validate:"required"`
}

// GetEventLeaderboardOutput contains the ranking, most drinks first
type GetEventLeaderboardOutput struct {
	Event  *models.Event
	Scores []models.EventScore
}

// GetEventRewindInput identifies the event and the user asking for the recap
type GetEventRewindInput struct {
	RoomID  string `validate:"required"`
	EventID string `validate:"required"`
	UserID  string `validate:"required"`
}

// GetEventRewindOutput contains the recap
type GetEventRewindOutput struct {
	Rewind *models.EventRewind
}
