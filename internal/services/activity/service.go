package activity

import (
	"context"
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/checkin"
	"github.com/KirkDiggler/ronda/internal/repositories/event"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/user"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	ledgerRepo    ledger.Repository
	checkInRepo   checkin.Repository
	eventRepo     event.Repository
	clock         clock.Clock
	uuidGenerator uuid.UUID
	userService   user.Service
	metrics       *metrics.Metrics
}

// New creates a new activity service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.LedgerRepo == nil {
		return nil, ErrNilLedgerRepo
	}

	if cfg.CheckInRepo == nil {
		return nil, ErrNilCheckInRepo
	}

	if cfg.EventRepo == nil {
		return nil, ErrNilEventRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		ledgerRepo:    cfg.LedgerRepo,
		checkInRepo:   cfg.CheckInRepo,
		eventRepo:     cfg.EventRepo,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
		userService:   cfg.UserService,
		metrics:       cfg.Metrics,
	}, nil
}

// CheckIn writes the check-in and bumps the user's drink tally in one
// transaction
func (s *service) CheckIn(ctx context.Context, input *CheckInInput) (out *CheckInOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("check_in", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	checkInID := s.uuidGenerator.NewUUID()
	now := s.clock.Now()

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if !room.IsMember(input.UserID) {
				return ErrNotRoomMember
			}

			if _, ok := room.FindDrink(input.DrinkID); !ok {
				return ErrDrinkNotFound
			}

			checkIn := &models.CheckIn{
				ID:        checkInID,
				RoomID:    input.RoomID,
				UserID:    input.UserID,
				DrinkID:   input.DrinkID,
				Caption:   input.Caption,
				PhotoURL:  input.PhotoURL,
				Location:  input.Location,
				Timestamp: now,
				ExpiresAt: now.Add(models.CheckInLifetime),
			}

			room.AddScore(input.UserID, input.DrinkID)
			room.UpdatedAt = now
			tx.SaveRoom(room)
			tx.AddCheckIn(checkIn)

			out = &CheckInOutput{
				CheckIn: checkIn,
				Score:   room.Score(input.UserID),
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ListCheckIns retrieves a room's live check-ins, newest first
func (s *service) ListCheckIns(ctx context.Context, input *ListCheckInsInput) (*ListCheckInsOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	output, err := s.checkInRepo.ListCheckIns(ctx, &checkin.ListCheckInsInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	return &ListCheckInsOutput{CheckIns: output.CheckIns}, nil
}

// CreateEvent schedules an event. The creator and every participant must be
// room members.
func (s *service) CreateEvent(ctx context.Context, input *CreateEventInput) (*CreateEventOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	participants := input.Participants
	if len(participants) == 0 {
		participants = []string{input.CreatedBy}
	}

	if !room.IsMember(input.CreatedBy) {
		return nil, ErrNotRoomMember
	}
	for _, userID := range participants {
		if !room.IsMember(userID) {
			return nil, ErrNotRoomMember
		}
	}

	evt := &models.Event{
		ID:             s.uuidGenerator.NewUUID(),
		RoomID:         input.RoomID,
		Title:          input.Title,
		Description:    input.Description,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Participants:   participants,
		Color:          input.Color,
		DrinksConsumed: []models.EventDrinkEntry{},
	}

	if err := s.eventRepo.SaveEvent(ctx, &event.SaveEventInput{Event: evt}); err != nil {
		return nil, err
	}

	log.Info().
		Str("room_id", input.RoomID).
		Str("event_id", evt.ID).
		Time("start", evt.StartDate).
		Msg("event created")

	return &CreateEventOutput{Event: evt}, nil
}

// ListEvents retrieves a room's events by start date
func (s *service) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	output, err := s.eventRepo.ListEvents(ctx, &event.ListEventsInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	return &ListEventsOutput{Events: output.Events}, nil
}

// GetActiveEvent returns the latest started event that has not ended
func (s *service) GetActiveEvent(ctx context.Context, input *GetActiveEventInput) (*GetActiveEventOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	output, err := s.eventRepo.ListEvents(ctx, &event.ListEventsInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var active *models.Event
	for _, evt := range output.Events {
		if !evt.IsActive(now) {
			continue
		}
		if active == nil || evt.StartDate.After(active.StartDate) {
			active = evt
		}
	}

	if active == nil {
		return nil, ErrNoActiveEvent
	}

	return &GetActiveEventOutput{Event: active}, nil
}

// LogEventDrink appends a drink to a running event
func (s *service) LogEventDrink(ctx context.Context, input *LogEventDrinkInput) (*LogEventDrinkOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	if !room.IsMember(input.UserID) {
		return nil, ErrNotRoomMember
	}

	if _, ok := room.FindDrink(input.DrinkID); !ok {
		return nil, ErrDrinkNotFound
	}

	now := s.clock.Now()
	entry := models.EventDrinkEntry{
		ID:        s.uuidGenerator.NewUUID(),
		UserID:    input.UserID,
		DrinkID:   input.DrinkID,
		Timestamp: now,
	}

	evt, err := s.eventRepo.UpdateEvent(ctx, &event.UpdateEventInput{
		RoomID:  input.RoomID,
		EventID: input.EventID,
		Apply: func(evt *models.Event) error {
			if !evt.IsActive(now) {
				return ErrEventNotActive
			}
			evt.DrinksConsumed = append(evt.DrinksConsumed, entry)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return &LogEventDrinkOutput{
		Event: evt,
		Entry: entry,
	}, nil
}

// GetEvent retrieves one event
func (s *service) GetEvent(ctx context.Context, input *GetEventInput) (*GetEventOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	evt, err := s.eventRepo.GetEvent(ctx, &event.GetEventInput{RoomID: input.RoomID, EventID: input.EventID})
	if err != nil {
		return nil, err
	}

	return &GetEventOutput{Event: evt}, nil
}

// GetEventLeaderboard counts each user's logged drinks. Every drink counts
// once regardless of its points.
func (s *service) GetEventLeaderboard(ctx context.Context, input *GetEventLeaderboardInput) (*GetEventLeaderboardOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	evt, err := s.eventRepo.GetEvent(ctx, &event.GetEventInput{RoomID: input.RoomID, EventID: input.EventID})
	if err != nil {
		return nil, err
	}

	return &GetEventLeaderboardOutput{
		Event:  evt,
		Scores: s.namedScores(ctx, evt.Scores()),
	}, nil
}

// GetEventRewind totals the event, picks its most logged drink and podium,
// and summarizes what input.UserID drank
func (s *service) GetEventRewind(ctx context.Context, input *GetEventRewindInput) (*GetEventRewindOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	evt, err := s.eventRepo.GetEvent(ctx, &event.GetEventInput{RoomID: input.RoomID, EventID: input.EventID})
	if err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	scores := evt.Scores()
	if len(scores) > rewindTopPlayers {
		scores = scores[:rewindTopPlayers]
	}

	rewind := &models.EventRewind{
		EventID:     evt.ID,
		Title:       evt.Title,
		TotalDrinks: len(evt.DrinksConsumed),
		TopPlayers:  s.namedScores(ctx, scores),
	}

	if tallies := evt.DrinkTallies(""); len(tallies) > 0 {
		rewind.MostPopularDrink = describeDrink(room, tallies[0])
	}

	if mine := evt.DrinkTallies(input.UserID); len(mine) > 0 {
		total := 0
		for _, tally := range mine {
			total += tally.Count
		}
		names := user.DisplayNames(ctx, s.userService, input.UserID)
		rewind.Personal = &models.PersonalRewind{
			UserID:        input.UserID,
			Name:          names[input.UserID],
			Drinks:        total,
			FavoriteDrink: describeDrink(room, mine[0]),
		}
	}

	return &GetEventRewindOutput{Rewind: rewind}, nil
}

// namedScores fills in display names
func (s *service) namedScores(ctx context.Context, scores []models.EventScore) []models.EventScore {
	ids := make([]string, len(scores))
	for i, score := range scores {
		ids[i] = score.UserID
	}

	names := user.DisplayNames(ctx, s.userService, ids...)
	for i := range scores {
		scores[i].Name = names[scores[i].UserID]
	}
	return scores
}

func describeDrink(room *models.Room, tally models.DrinkTally) *models.DrinkTally {
	if drink, ok := room.FindDrink(tally.DrinkID); ok {
		tally.Name = drink.Name
		tally.Emoji = drink.Emoji
	}
	return &tally
}
