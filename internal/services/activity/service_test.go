package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/ronda/internal/common/clock/mocks"
	uuidMocks "github.com/KirkDiggler/ronda/internal/common/uuid/mocks"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/checkin"
	"github.com/KirkDiggler/ronda/internal/repositories/event"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	userRepo "github.com/KirkDiggler/ronda/internal/repositories/user"
	"github.com/KirkDiggler/ronda/internal/services/user"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testRoomID = "room-1"

type ActivityServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	mockUUID  *uuidMocks.MockUUID
	mr        *miniredis.Miniredis
	client    *redis.Client
	ledger    ledger.Repository
	service   *service
	ctx       context.Context

	testTime time.Time
	idSeq    int
}

func (s *ActivityServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.ctx = context.Background()

	s.testTime = time.Date(2025, 4, 19, 21, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	s.idSeq = 0
	s.mockUUID.EXPECT().NewUUID().DoAndReturn(func() string {
		s.idSeq++
		return fmt.Sprintf("id-%d", s.idSeq)
	}).AnyTimes()

	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.mr.SetTime(s.testTime)
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ledgerRepo, err := ledger.NewRedis(&ledger.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.ledger = ledgerRepo

	checkInRepo, err := checkin.NewRedis(&checkin.Config{RedisClient: s.client})
	s.Require().NoError(err)

	eventRepo, err := event.NewRedis(&event.Config{RedisClient: s.client})
	s.Require().NoError(err)

	profiles, err := userRepo.NewRedis(&userRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	userService, err := user.New(&user.Config{UserRepo: profiles, Clock: s.mockClock})
	s.Require().NoError(err)

	_, err = userService.UpsertProfile(s.ctx, &user.UpsertProfileInput{UserID: "alice", Username: "Alice", Age: 27})
	s.Require().NoError(err)

	svc, err := New(&Config{
		LedgerRepo:    ledgerRepo,
		CheckInRepo:   checkInRepo,
		EventRepo:     eventRepo,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
		UserService:   userService,
	})
	s.Require().NoError(err)
	s.service = svc

	room := &models.Room{
		ID:         testRoomID,
		Title:      "Friday Drinks",
		OwnerID:    "owner",
		InviteCode: "ACT001",
		Drinks: []models.Drink{
			{ID: "beer", Name: "Beer", Points: 1},
			{ID: "shot", Name: "Shot", Points: 3, Emoji: "🥃"},
		},
		UserCredits: map[string]int{},
	}
	room.AddMember("owner")
	room.AddMember("alice")
	room.AddMember("bob")
	room.AddMember("carol")
	s.Require().NoError(s.ledger.CreateRoom(s.ctx, &ledger.CreateRoomInput{Room: room}))
}

func (s *ActivityServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestActivityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ActivityServiceTestSuite))
}

func (s *ActivityServiceTestSuite) createEvent(title string, start, end time.Time) *models.Event {
	output, err := s.service.CreateEvent(s.ctx, &CreateEventInput{
		RoomID:    testRoomID,
		CreatedBy: "owner",
		Title:     title,
		StartDate: start,
		EndDate:   end,
		Color:     "#FF8800",
	})
	s.Require().NoError(err)
	return output.Event
}

func (s *ActivityServiceTestSuite) TestCheckInCountsTowardsScore() {
	output, err := s.service.CheckIn(s.ctx, &CheckInInput{
		RoomID:   testRoomID,
		UserID:   "alice",
		DrinkID:  "shot",
		Caption:  "Tequila o'clock",
		Location: &models.GeoPoint{Latitude: 40.4168, Longitude: -3.7038},
	})
	s.Require().NoError(err)

	s.Equal(3, output.Score)
	s.Equal(s.testTime.Add(models.CheckInLifetime), output.CheckIn.ExpiresAt)

	room, err := s.ledger.GetRoom(s.ctx, &ledger.GetRoomInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Equal(1, room.Scores["alice"]["shot"])

	s.Equal(models.CheckInLifetime, s.mr.TTL(keyspace.CheckIn(testRoomID, output.CheckIn.ID)))
}

func (s *ActivityServiceTestSuite) TestCheckInRejections() {
	_, err := s.service.CheckIn(s.ctx, &CheckInInput{RoomID: testRoomID, UserID: "mallory", DrinkID: "beer"})
	s.Equal(ErrNotRoomMember, err)

	_, err = s.service.CheckIn(s.ctx, &CheckInInput{RoomID: testRoomID, UserID: "alice", DrinkID: "absinthe"})
	s.Equal(ErrDrinkNotFound, err)

	_, err = s.service.CheckIn(s.ctx, &CheckInInput{
		RoomID: testRoomID, UserID: "alice", DrinkID: "beer",
		Location: &models.GeoPoint{Latitude: 123, Longitude: 0},
	})
	s.True(errors.Is(err, validation.ErrInvalidInput))

	// Nothing was tallied
	room, err := s.ledger.GetRoom(s.ctx, &ledger.GetRoomInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Empty(room.Scores["alice"])
}

func (s *ActivityServiceTestSuite) TestListCheckInsDropsExpired() {
	_, err := s.service.CheckIn(s.ctx, &CheckInInput{RoomID: testRoomID, UserID: "alice", DrinkID: "beer"})
	s.Require().NoError(err)

	output, err := s.service.ListCheckIns(s.ctx, &ListCheckInsInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Len(output.CheckIns, 1)

	s.mr.FastForward(models.CheckInLifetime + time.Second)

	output, err = s.service.ListCheckIns(s.ctx, &ListCheckInsInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Empty(output.CheckIns)
}

func (s *ActivityServiceTestSuite) TestCreateEventValidation() {
	_, err := s.service.CreateEvent(s.ctx, &CreateEventInput{
		RoomID: testRoomID, CreatedBy: "owner", Title: "Bad color",
		StartDate: s.testTime, EndDate: s.testTime.Add(time.Hour), Color: "orange",
	})
	s.True(errors.Is(err, validation.ErrInvalidInput))

	_, err = s.service.CreateEvent(s.ctx, &CreateEventInput{
		RoomID: testRoomID, CreatedBy: "owner", Title: "Backwards",
		StartDate: s.testTime, EndDate: s.testTime.Add(-time.Hour),
	})
	s.True(errors.Is(err, validation.ErrInvalidInput))

	_, err = s.service.CreateEvent(s.ctx, &CreateEventInput{
		RoomID: testRoomID, CreatedBy: "owner", Title: "Gatecrash",
		StartDate: s.testTime, EndDate: s.testTime.Add(time.Hour),
		Participants: []string{"owner", "mallory"},
	})
	s.Equal(ErrNotRoomMember, err)
}

func (s *ActivityServiceTestSuite) TestCreateEventDefaultsParticipants() {
	evt := s.createEvent("Pub crawl", s.testTime, s.testTime.Add(4*time.Hour))
	s.Equal([]string{"owner"}, evt.Participants)
	s.Empty(evt.DrinksConsumed)
}

func (s *ActivityServiceTestSuite) TestGetActiveEventPicksLatestStarted() {
	s.createEvent("All day festival", s.testTime.Add(-10*time.Hour), s.testTime.Add(5*time.Hour))
	late := s.createEvent("Late session", s.testTime.Add(-time.Hour), s.testTime.Add(2*time.Hour))
	s.createEvent("Tomorrow", s.testTime.Add(20*time.Hour), s.testTime.Add(24*time.Hour))
	s.createEvent("Last week", s.testTime.Add(-7*24*time.Hour), s.testTime.Add(-6*24*time.Hour))

	output, err := s.service.GetActiveEvent(s.ctx, &GetActiveEventInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Equal(late.ID, output.Event.ID)

	events, err := s.service.ListEvents(s.ctx, &ListEventsInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Len(events.Events, 4)
	s.Equal("Last week", events.Events[0].Title)
}

func (s *ActivityServiceTestSuite) TestGetActiveEventNone() {
	_, err := s.service.GetActiveEvent(s.ctx, &GetActiveEventInput{RoomID: testRoomID})
	s.Equal(ErrNoActiveEvent, err)
}

func (s *ActivityServiceTestSuite) TestLogEventDrink() {
	evt := s.createEvent("Pub crawl", s.testTime.Add(-time.Hour), s.testTime.Add(time.Hour))

	output, err := s.service.LogEventDrink(s.ctx, &LogEventDrinkInput{
		RoomID: testRoomID, EventID: evt.ID, UserID: "alice", DrinkID: "beer",
	})
	s.Require().NoError(err)
	s.Require().Len(output.Event.DrinksConsumed, 1)
	s.Equal("alice", output.Entry.UserID)
	s.Equal(s.testTime, output.Entry.Timestamp)

	_, err = s.service.LogEventDrink(s.ctx, &LogEventDrinkInput{
		RoomID: testRoomID, EventID: evt.ID, UserID: "alice", DrinkID: "absinthe",
	})
	s.Equal(ErrDrinkNotFound, err)
}

func (s *ActivityServiceTestSuite) TestLogEventDrinkOutsideEvent() {
	evt := s.createEvent("Tomorrow", s.testTime.Add(20*time.Hour), s.testTime.Add(24*time.Hour))

	_, err := s.service.LogEventDrink(s.ctx, &LogEventDrinkInput{
		RoomID: testRoomID, EventID: evt.ID, UserID: "alice", DrinkID: "beer",
	})
	s.True(errors.Is(err, ErrEventNotActive))

	_, err = s.service.LogEventDrink(s.ctx, &LogEventDrinkInput{
		RoomID: testRoomID, EventID: "missing", UserID: "alice", DrinkID: "beer",
	})
	s.True(errors.Is(err, event.ErrEventNotFound))
}

func (s *ActivityServiceTestSuite) logDrinks(eventID string, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		_, err := s.service.LogEventDrink(s.ctx, &LogEventDrinkInput{
			RoomID: testRoomID, EventID: eventID, UserID: pairs[i], DrinkID: pairs[i+1],
		})
		s.Require().NoError(err)
	}
}

func (s *ActivityServiceTestSuite) TestGetEvent() {
	evt := s.createEvent("Pub crawl", s.testTime, s.testTime.Add(time.Hour))

	output, err := s.service.GetEvent(s.ctx, &GetEventInput{RoomID: testRoomID, EventID: evt.ID})
	s.Require().NoError(err)
	s.Equal("Pub crawl", output.Event.Title)

	_, err = s.service.GetEvent(s.ctx, &GetEventInput{RoomID: testRoomID, EventID: "missing"})
	s.True(errors.Is(err, event.ErrEventNotFound))
}

func (s *ActivityServiceTestSuite) TestGetEventLeaderboard() {
	evt := s.createEvent("Pub crawl", s.testTime.Add(-time.Hour), s.testTime.Add(time.Hour))
	s.logDrinks(evt.ID,
		"bob", "beer",
		"alice", "beer",
		"alice", "shot",
		"bob", "beer",
		"alice", "beer",
		"owner", "shot",
	)

	output, err := s.service.GetEventLeaderboard(s.ctx, &GetEventLeaderboardInput{RoomID: testRoomID, EventID: evt.ID})
	s.Require().NoError(err)

	// Counts drinks, not points, and names users with a profile
	s.Equal([]models.EventScore{
		{UserID: "alice", Name: "Alice", Drinks: 3},
		{UserID: "bob", Name: "bob", Drinks: 2},
		{UserID: "owner", Name: "owner", Drinks: 1},
	}, output.Scores)
}

func (s *ActivityServiceTestSuite) TestGetEventRewind() {
	evt := s.createEvent("Pub crawl", s.testTime.Add(-time.Hour), s.testTime.Add(time.Hour))
	s.logDrinks(evt.ID,
		"bob", "beer",
		"alice", "shot",
		"alice", "shot",
		"carol", "beer",
		"alice", "beer",
		"owner", "beer",
		"bob", "shot",
	)

	output, err := s.service.GetEventRewind(s.ctx, &GetEventRewindInput{
		RoomID: testRoomID, EventID: evt.ID, UserID: "alice",
	})
	s.Require().NoError(err)

	rewind := output.Rewind
	s.Equal(evt.ID, rewind.EventID)
	s.Equal(7, rewind.TotalDrinks)
	s.Equal(&models.DrinkTally{DrinkID: "beer", Name: "Beer", Count: 4}, rewind.MostPopularDrink)

	// Four drinkers, three on the podium
	s.Equal([]models.EventScore{
		{UserID: "alice", Name: "Alice", Drinks: 3},
		{UserID: "bob", Name: "bob", Drinks: 2},
		{UserID: "carol", Name: "carol", Drinks: 1},
	}, rewind.TopPlayers)

	s.Require().NotNil(rewind.Personal)
	s.Equal("Alice", rewind.Personal.Name)
	s.Equal(3, rewind.Personal.Drinks)
	s.Equal(&models.DrinkTally{DrinkID: "shot", Name: "Shot", Emoji: "🥃", Count: 2}, rewind.Personal.FavoriteDrink)
}

func (s *ActivityServiceTestSuite) TestGetEventRewindEmpty() {
	evt := s.createEvent("Quiet night", s.testTime.Add(-time.Hour), s.testTime.Add(time.Hour))

	output, err := s.service.GetEventRewind(s.ctx, &GetEventRewindInput{
		RoomID: testRoomID, EventID: evt.ID, UserID: "alice",
	})
	s.Require().NoError(err)
	s.Zero(output.Rewind.TotalDrinks)
	s.Nil(output.Rewind.MostPopularDrink)
	s.Empty(output.Rewind.TopPlayers)
	s.Nil(output.Rewind.Personal)
}
