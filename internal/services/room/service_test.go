package room

import (
	"context"
	"fmt"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/ronda/internal/common/clock/mocks"
	uuidMocks "github.com/KirkDiggler/ronda/internal/common/uuid/mocks"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RoomServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	mockUUID  *uuidMocks.MockUUID
	mr        *miniredis.Miniredis
	client    *redis.Client
	service   *service
	ctx       context.Context

	testTime time.Time
	idSeq    int
}

func (s *RoomServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.ctx = context.Background()

	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	// IDs are unique in their first six characters so invite codes differ
	s.idSeq = 0
	s.mockUUID.EXPECT().NewUUID().DoAndReturn(func() string {
		s.idSeq++
		return fmt.Sprintf("%06d-room", s.idSeq)
	}).AnyTimes()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ledgerRepo, err := ledger.NewRedis(&ledger.Config{RedisClient: s.client})
	s.Require().NoError(err)

	svc, err := New(&Config{
		LedgerRepo:    ledgerRepo,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *RoomServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestRoomServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RoomServiceTestSuite))
}

func (s *RoomServiceTestSuite) createRoom() *models.Room {
	output, err := s.service.CreateRoom(s.ctx, &CreateRoomInput{
		Title:     "Friday Drinks",
		OwnerID:   "owner",
		ChannelID: "channel-1",
	})
	s.Require().NoError(err)
	return output.Room
}

func (s *RoomServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.Equal(ErrNilConfig, err)

	_, err = New(&Config{})
	s.Equal(ErrNilLedgerRepo, err)
}

func (s *RoomServiceTestSuite) TestCreateRoom() {
	room := s.createRoom()

	s.Equal("000001-room", room.ID)
	s.Equal("000002", room.InviteCode)
	s.Equal([]string{"owner"}, room.MemberIDs)
	s.Equal(models.StartingCredits, room.Balance("owner"))
	s.Len(room.Drinks, len(DefaultDrinks))
	s.Equal(s.testTime, room.CreatedAt)

	got, err := s.service.GetRoomByChannel(s.ctx, &GetRoomByChannelInput{ChannelID: "channel-1"})
	s.Require().NoError(err)
	s.Equal(room.ID, got.Room.ID)
}

func (s *RoomServiceTestSuite) TestCreateRoomRetriesInviteCollision() {
	// Claim the first code the service will try
	s.Require().NoError(s.mr.Set(keyspace.Invite("000002"), "someone-else"))

	room := s.createRoom()
	s.Equal("000003", room.InviteCode)
}

func (s *RoomServiceTestSuite) TestCreateRoomValidation() {
	_, err := s.service.CreateRoom(s.ctx, &CreateRoomInput{OwnerID: "owner"})
	s.ErrorIs(err, validation.ErrInvalidInput)
}

func (s *RoomServiceTestSuite) TestJoinByInviteCode() {
	room := s.createRoom()

	output, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{
		InviteCode: " 000002 ",
		UserID:     "alice",
	})
	s.Require().NoError(err)
	s.False(output.AlreadyMember)
	s.True(output.Room.IsMember("alice"))
	s.Equal(models.StartingCredits, output.Room.Balance("alice"))

	again, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomID: room.ID, UserID: "alice"})
	s.Require().NoError(err)
	s.True(again.AlreadyMember)

	rooms, err := s.service.ListRooms(s.ctx, &ListRoomsInput{UserID: "alice"})
	s.Require().NoError(err)
	s.Require().Len(rooms.Rooms, 1)
	s.Equal(room.ID, rooms.Rooms[0].ID)
}

func (s *RoomServiceTestSuite) TestJoinRequiresIdentifier() {
	_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{UserID: "alice"})
	s.ErrorIs(err, ErrRoomIdentifierNeeded)

	_, err = s.service.JoinRoom(s.ctx, &JoinRoomInput{InviteCode: "NOPE00", UserID: "alice"})
	s.ErrorIs(err, ledger.ErrRoomNotFound)
}

func (s *RoomServiceTestSuite) TestRejoinKeepsBalance() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomID: room.ID, UserID: "alice"})
	s.Require().NoError(err)

	// Spend some credits directly through the ledger
	ledgerRepo, err := ledger.NewRedis(&ledger.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.Require().NoError(ledgerRepo.RunTransaction(s.ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			r, err := tx.GetRoom(ctx, room.ID)
			if err != nil {
				return err
			}
			if err := r.Deduct("alice", 2500); err != nil {
				return err
			}
			tx.SaveRoom(r)
			return nil
		},
	}))

	left, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomID: room.ID, UserID: "alice"})
	s.Require().NoError(err)
	s.True(left.Left)

	_, err = s.service.GetBalance(s.ctx, &GetBalanceInput{RoomID: room.ID, UserID: "alice"})
	s.ErrorIs(err, ErrNotRoomMember)

	_, err = s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomID: room.ID, UserID: "alice"})
	s.Require().NoError(err)

	balance, err := s.service.GetBalance(s.ctx, &GetBalanceInput{RoomID: room.ID, UserID: "alice"})
	s.Require().NoError(err)
	s.Equal(7500, balance.Balance)
}

func (s *RoomServiceTestSuite) TestOwnerCannotLeave() {
	room := s.createRoom()

	_, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomID: room.ID, UserID: "owner"})
	s.ErrorIs(err, ErrOwnerCannotLeave)
}

func (s *RoomServiceTestSuite) TestUpdateDrinksAdminOnly() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomID: room.ID, UserID: "alice"})
	s.Require().NoError(err)

	drinks := []models.Drink{{ID: "mead", Name: "Mead", Points: 4}}

	_, err = s.service.UpdateDrinks(s.ctx, &UpdateDrinksInput{RoomID: room.ID, ActorID: "alice", Drinks: drinks})
	s.ErrorIs(err, ErrNotRoomAdmin)

	_, err = s.service.UpdateDrinks(s.ctx, &UpdateDrinksInput{
		RoomID:  room.ID,
		ActorID: "owner",
		Drinks:  append(drinks, models.Drink{ID: "mead", Name: "Mead again"}),
	})
	s.ErrorIs(err, ErrDuplicateDrink)

	_, err = s.service.UpdateDrinks(s.ctx, &UpdateDrinksInput{
		RoomID:  room.ID,
		ActorID: "owner",
		Drinks:  []models.Drink{{ID: "", Name: "Nameless"}},
	})
	s.ErrorIs(err, validation.ErrInvalidInput)

	output, err := s.service.UpdateDrinks(s.ctx, &UpdateDrinksInput{RoomID: room.ID, ActorID: "owner", Drinks: drinks})
	s.Require().NoError(err)
	s.Equal(drinks, output.Room.Drinks)
}

func (s *RoomServiceTestSuite) TestAddDrinkAndLeaderboard() {
	room := s.createRoom()
	for _, user := range []string{"alice", "bob"} {
		_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomID: room.ID, UserID: user})
		s.Require().NoError(err)
	}

	add := func(user, drink string) *AddDrinkOutput {
		out, err := s.service.AddDrink(s.ctx, &AddDrinkInput{RoomID: room.ID, UserID: user, DrinkID: drink})
		s.Require().NoError(err)
		return out
	}

	add("alice", "beer")
	out := add("alice", "beer")
	s.Equal(2, out.Count)
	s.Equal(2, out.Score)

	out = add("bob", "shot")
	s.Equal(3, out.Score)

	_, err := s.service.AddDrink(s.ctx, &AddDrinkInput{RoomID: room.ID, UserID: "alice", DrinkID: "absinthe"})
	s.ErrorIs(err, ErrDrinkNotFound)

	_, err = s.service.AddDrink(s.ctx, &AddDrinkInput{RoomID: room.ID, UserID: "stranger", DrinkID: "beer"})
	s.ErrorIs(err, ErrNotRoomMember)

	board, err := s.service.GetLeaderboard(s.ctx, &GetLeaderboardInput{RoomID: room.ID})
	s.Require().NoError(err)
	s.Require().Len(board.Entries, 3)
	s.Equal("bob", board.Entries[0].UserID)
	s.Equal("alice", board.Entries[1].UserID)
	s.Equal(2, board.Entries[1].DrinkCounts["beer"])
	s.Equal("owner", board.Entries[2].UserID)
	s.Equal(0, board.Entries[2].Score)
	s.Equal(models.StartingCredits, board.Entries[2].Credits)
}

func (s *RoomServiceTestSuite) TestLeaderboardTiesOrderedByUserID() {
	room := s.createRoom()
	for _, user := range []string{"zed", "amy"} {
		_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomID: room.ID, UserID: user})
		s.Require().NoError(err)
	}

	board, err := s.service.GetLeaderboard(s.ctx, &GetLeaderboardInput{RoomID: room.ID})
	s.Require().NoError(err)
	s.Require().Len(board.Entries, 3)
	s.Equal("amy", board.Entries[0].UserID)
	s.Equal("owner", board.Entries[1].UserID)
	s.Equal("zed", board.Entries[2].UserID)
}
