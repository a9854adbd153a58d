package duel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/ronda/internal/common/clock/mocks"
	uuidMocks "github.com/KirkDiggler/ronda/internal/common/uuid/mocks"
	"github.com/KirkDiggler/ronda/internal/models"
	chatRepo "github.com/KirkDiggler/ronda/internal/repositories/chat"
	userRepo "github.com/KirkDiggler/ronda/internal/repositories/user"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/KirkDiggler/ronda/internal/services/user"
	userMocks "github.com/KirkDiggler/ronda/internal/services/user/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testRoomID = "room-1"

type DuelServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	mockUUID  *uuidMocks.MockUUID
	mr        *miniredis.Miniredis
	client    *redis.Client
	ledger    ledger.Repository
	chat      chat.Service
	messaging messaging.Service
	service   *service
	ctx       context.Context

	now   time.Time
	idSeq int
}

func (s *DuelServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.ctx = context.Background()

	// The clock follows s.now so tests can move time forward
	s.now = time.Date(2025, 4, 19, 20, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()

	s.idSeq = 0
	s.mockUUID.EXPECT().NewUUID().DoAndReturn(func() string {
		s.idSeq++
		return fmt.Sprintf("id-%d", s.idSeq)
	}).AnyTimes()

	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.mr.SetTime(s.now)
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ledgerRepo, err := ledger.NewRedis(&ledger.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.ledger = ledgerRepo

	messages, err := chatRepo.NewRedis(&chatRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	chatService, err := chat.New(&chat.Config{
		ChatRepo:      messages,
		LedgerRepo:    ledgerRepo,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
	})
	s.Require().NoError(err)
	s.chat = chatService

	messagingService, err := messaging.New(&messaging.Config{Seed: 7})
	s.Require().NoError(err)
	s.messaging = messagingService

	profiles, err := userRepo.NewRedis(&userRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	userService, err := user.New(&user.Config{UserRepo: profiles, Clock: s.mockClock})
	s.Require().NoError(err)

	// alice and carol have usernames, the rest are shown by ID
	for id, name := range map[string]string{"alice": "Alice", "carol": "Carol"} {
		_, err := userService.UpsertProfile(s.ctx, &user.UpsertProfileInput{UserID: id, Username: name})
		s.Require().NoError(err)
	}

	svc, err := New(&Config{
		LedgerRepo:       ledgerRepo,
		ChatService:      chatService,
		MessagingService: messagingService,
		UserService:      userService,
		Clock:            s.mockClock,
		UUIDGenerator:    s.mockUUID,
	})
	s.Require().NoError(err)
	s.service = svc

	// Five members, so a poll needs three votes
	room := &models.Room{
		ID:          testRoomID,
		Title:       "Pub Quiz",
		OwnerID:     "owner",
		InviteCode:  "QUIZ01",
		UserCredits: map[string]int{},
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	for _, id := range []string{"owner", "alice", "bob", "carol", "dave"} {
		room.AddMember(id)
	}
	s.Require().NoError(s.ledger.CreateRoom(s.ctx, &ledger.CreateRoomInput{Room: room}))
}

func (s *DuelServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestDuelServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DuelServiceTestSuite))
}

func (s *DuelServiceTestSuite) balance(userID string) int {
	room, err := s.ledger.GetRoom(s.ctx, &ledger.GetRoomInput{RoomID: testRoomID})
	s.Require().NoError(err)
	return room.Balance(userID)
}

func (s *DuelServiceTestSuite) messages() []string {
	output, err := s.chat.ListMessages(s.ctx, &chat.ListMessagesInput{RoomID: testRoomID})
	s.Require().NoError(err)

	texts := make([]string, 0, len(output.Messages))
	for _, m := range output.Messages {
		texts = append(texts, m.Text)
	}
	return texts
}

func (s *DuelServiceTestSuite) createDuel(wager int) *models.Duel {
	output, err := s.service.CreateDuel(s.ctx, &CreateDuelInput{
		RoomID:       testRoomID,
		Title:        "Darts, best of three",
		ChallengerID: "alice",
		OpponentID:   "bob",
		Wager:        wager,
		Duration:     time.Hour,
	})
	s.Require().NoError(err)
	return output.Duel
}

func (s *DuelServiceTestSuite) startDuel(wager int) *models.Duel {
	duel := s.createDuel(wager)
	output, err := s.service.AcceptDuel(s.ctx, &AcceptDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, UserID: "bob",
	})
	s.Require().NoError(err)
	return output.Duel
}

func (s *DuelServiceTestSuite) openPoll(wager int) (*models.Duel, *models.Poll) {
	duel := s.startDuel(wager)
	output, err := s.service.InitiateDuelPoll(s.ctx, &InitiateDuelPollInput{
		RoomID: testRoomID, DuelID: duel.ID, RequestedBy: "owner",
	})
	s.Require().NoError(err)
	return output.Duel, output.Poll
}

func (s *DuelServiceTestSuite) vote(pollID, option, userID string) *CastVoteOutput {
	output, err := s.service.CastVote(s.ctx, &CastVoteInput{
		RoomID: testRoomID, PollID: pollID, Option: option, UserID: userID,
	})
	s.Require().NoError(err)
	return output
}

func (s *DuelServiceTestSuite) TestCreateDuel() {
	duel := s.createDuel(500)

	s.Equal(models.DuelStatusAwaitingAcceptance, duel.Status)
	s.Equal(s.now.Add(time.Hour), duel.EndTime)
	s.Equal(models.StartingCredits-500, s.balance("alice"))
	s.Equal(models.StartingCredits, s.balance("bob"))
}

func (s *DuelServiceTestSuite) TestCreateDuelRejections() {
	_, err := s.service.CreateDuel(s.ctx, &CreateDuelInput{
		RoomID: testRoomID, Title: "Mirror match", ChallengerID: "alice", OpponentID: "alice",
		Wager: 10, Duration: time.Hour,
	})
	s.Equal(ErrSelfDuel, err)

	_, err = s.service.CreateDuel(s.ctx, &CreateDuelInput{
		RoomID: testRoomID, Title: "Stranger danger", ChallengerID: "alice", OpponentID: "mallory",
		Wager: 10, Duration: time.Hour,
	})
	s.Equal(ErrNotRoomMember, err)

	_, err = s.service.CreateDuel(s.ctx, &CreateDuelInput{
		RoomID: testRoomID, Title: "All in", ChallengerID: "alice", OpponentID: "bob",
		Wager: models.StartingCredits + 1, Duration: time.Hour,
	})
	s.True(errors.Is(err, models.ErrInsufficientCredits))
	s.Equal(models.StartingCredits, s.balance("alice"))
}

func (s *DuelServiceTestSuite) TestAcceptDuel() {
	duel := s.createDuel(500)

	_, err := s.service.AcceptDuel(s.ctx, &AcceptDuelInput{RoomID: testRoomID, DuelID: duel.ID, UserID: "carol"})
	s.Equal(ErrNotDuelOpponent, err)

	// Accepting later restarts the clock with the same duration
	s.now = s.now.Add(10 * time.Minute)
	output, err := s.service.AcceptDuel(s.ctx, &AcceptDuelInput{RoomID: testRoomID, DuelID: duel.ID, UserID: "bob"})
	s.Require().NoError(err)

	s.Equal(models.DuelStatusInProgress, output.Duel.Status)
	s.Equal(s.now, output.Duel.StartTime)
	s.Equal(s.now.Add(time.Hour), output.Duel.EndTime)
	s.Equal(models.StartingCredits-500, output.Balance)

	member := keyspace.ActiveDuelMember(testRoomID, duel.ID)
	score, err := s.client.ZScore(s.ctx, keyspace.ActiveDuels(), member).Result()
	s.Require().NoError(err)
	s.Equal(float64(output.Duel.EndTime.Unix()), score)

	_, err = s.service.AcceptDuel(s.ctx, &AcceptDuelInput{RoomID: testRoomID, DuelID: duel.ID, UserID: "bob"})
	s.Equal(ErrInvalidDuelState, err)
}

func (s *DuelServiceTestSuite) TestAcceptDuelInsufficientCreditsLeavesDuel() {
	duel := s.createDuel(500)

	// Drain bob's balance directly
	err := s.ledger.RunTransaction(s.ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			room, err := tx.GetRoom(ctx, testRoomID)
			if err != nil {
				return err
			}
			if err := room.Deduct("bob", models.StartingCredits-100); err != nil {
				return err
			}
			tx.SaveRoom(room)
			return nil
		},
	})
	s.Require().NoError(err)

	_, err = s.service.AcceptDuel(s.ctx, &AcceptDuelInput{RoomID: testRoomID, DuelID: duel.ID, UserID: "bob"})
	s.True(errors.Is(err, models.ErrInsufficientCredits))

	got, err := s.service.GetDuel(s.ctx, &GetDuelInput{RoomID: testRoomID, DuelID: duel.ID})
	s.Require().NoError(err)
	s.Equal(models.DuelStatusAwaitingAcceptance, got.Duel.Status)
	s.Equal(100, s.balance("bob"))
}

func (s *DuelServiceTestSuite) TestDeclineDuelRefundsChallenger() {
	duel := s.createDuel(500)

	_, err := s.service.DeclineDuel(s.ctx, &DeclineDuelInput{RoomID: testRoomID, DuelID: duel.ID, UserID: "alice"})
	s.Equal(ErrNotDuelOpponent, err)

	_, err = s.service.DeclineDuel(s.ctx, &DeclineDuelInput{RoomID: testRoomID, DuelID: duel.ID, UserID: "bob"})
	s.Require().NoError(err)

	s.Equal(models.StartingCredits, s.balance("alice"))
	_, err = s.service.GetDuel(s.ctx, &GetDuelInput{RoomID: testRoomID, DuelID: duel.ID})
	s.True(errors.Is(err, ledger.ErrDuelNotFound))
}

func (s *DuelServiceTestSuite) TestResolveDuelWinnerTakesPot() {
	duel := s.startDuel(500)

	_, err := s.service.ResolveDuel(s.ctx, &ResolveDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, WinnerID: "alice", ResolvedBy: "alice",
	})
	s.Equal(ErrNotRoomAdmin, err)

	_, err = s.service.ResolveDuel(s.ctx, &ResolveDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, WinnerID: "carol", ResolvedBy: "owner",
	})
	s.Equal(ErrInvalidWinner, err)

	output, err := s.service.ResolveDuel(s.ctx, &ResolveDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, WinnerID: "alice", ResolvedBy: "owner",
	})
	s.Require().NoError(err)

	s.Equal(models.DuelStatusResolved, output.Duel.Status)
	s.Equal("alice", output.Duel.WinnerID)
	s.Equal(models.StartingCredits+500, s.balance("alice"))
	s.Equal(models.StartingCredits-500, s.balance("bob"))
	s.Equal(models.ResolvedRetention, s.mr.TTL(keyspace.Duel(testRoomID, duel.ID)))
	s.False(s.mr.Exists(keyspace.ActiveDuels()))

	_, err = s.service.ResolveDuel(s.ctx, &ResolveDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, WinnerID: "bob", ResolvedBy: "owner",
	})
	s.Equal(ErrDuelAlreadyResolved, err)
	s.Equal(models.StartingCredits+500, s.balance("alice"))

	s.Require().Len(s.messages(), 1)
	s.Contains(s.messages()[0], "Alice wins")
}

func (s *DuelServiceTestSuite) TestResolveDuelDrawRefunds() {
	duel := s.startDuel(500)

	output, err := s.service.ResolveDuel(s.ctx, &ResolveDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, ResolvedBy: "owner",
	})
	s.Require().NoError(err)

	s.Equal(models.DrawWinnerID, output.Duel.WinnerID)
	s.Equal(models.StartingCredits, s.balance("alice"))
	s.Equal(models.StartingCredits, s.balance("bob"))
}

func (s *DuelServiceTestSuite) TestResolveDuelAwaitingAcceptance() {
	duel := s.createDuel(500)

	_, err := s.service.ResolveDuel(s.ctx, &ResolveDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, WinnerID: "alice", ResolvedBy: "owner",
	})
	s.Equal(ErrInvalidDuelState, err)
}

func (s *DuelServiceTestSuite) TestInitiateDuelPoll() {
	duel := s.startDuel(500)

	_, err := s.service.InitiateDuelPoll(s.ctx, &InitiateDuelPollInput{
		RoomID: testRoomID, DuelID: duel.ID, RequestedBy: "carol",
	})
	s.Equal(ErrNotRoomAdmin, err)

	output, err := s.service.InitiateDuelPoll(s.ctx, &InitiateDuelPollInput{
		RoomID: testRoomID, DuelID: duel.ID, RequestedBy: "owner",
	})
	s.Require().NoError(err)

	poll := output.Poll
	s.Equal("Who won: Alice or bob?", poll.Question)
	s.Equal([]string{"alice", "bob", models.DrawWinnerID}, poll.Options)
	s.Equal(5, poll.MemberCountAtCreation)
	s.Equal(3, poll.MajorityThreshold())
	s.Equal(models.DuelStatusInPoll, output.Duel.Status)
	s.Equal(poll.ID, output.Duel.PollID)

	// No credits move when a poll opens
	s.Equal(models.StartingCredits-500, s.balance("alice"))

	texts := s.messages()
	s.Require().Len(texts, 1)
	s.True(strings.HasPrefix(texts[0], "🗳️ Who won: Alice or bob?"))

	polls, err := s.service.ListPolls(s.ctx, &ListPollsInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Len(polls.Polls, 1)

	_, err = s.service.InitiateDuelPoll(s.ctx, &InitiateDuelPollInput{
		RoomID: testRoomID, DuelID: duel.ID, RequestedBy: "owner",
	})
	s.Equal(ErrInvalidDuelState, err)
}

func (s *DuelServiceTestSuite) TestPollMajorityResolvesDuel() {
	duel, poll := s.openPoll(500)

	// Two of five is below the threshold of three
	first := s.vote(poll.ID, "alice", "carol")
	s.True(first.Accepted)
	s.False(first.Resolved)

	second := s.vote(poll.ID, "alice", "dave")
	s.True(second.Accepted)
	s.False(second.Resolved)

	// A second vote from carol changes nothing
	repeat := s.vote(poll.ID, "bob", "carol")
	s.False(repeat.Accepted)
	s.False(repeat.Resolved)
	s.Empty(repeat.Poll.Votes["bob"])

	third := s.vote(poll.ID, "alice", "owner")
	s.True(third.Accepted)
	s.True(third.Resolved)
	s.Equal("alice", third.Duel.WinnerID)
	s.Equal(models.DuelStatusResolved, third.Duel.Status)

	s.Equal(models.StartingCredits+500, s.balance("alice"))
	s.Equal(models.StartingCredits-500, s.balance("bob"))

	_, err := s.service.CastVote(s.ctx, &CastVoteInput{
		RoomID: testRoomID, PollID: poll.ID, Option: "bob", UserID: "bob",
	})
	s.True(errors.Is(err, ledger.ErrPollNotFound))

	got, err := s.service.GetDuel(s.ctx, &GetDuelInput{RoomID: testRoomID, DuelID: duel.ID})
	s.Require().NoError(err)
	s.Empty(got.Duel.PollID)

	// Poll message, three vote notices and the result
	texts := s.messages()
	s.Len(texts, 5)
	s.Contains(texts, "Carol voted for Alice")
	s.Contains(texts, "dave voted for Alice")
}

func (s *DuelServiceTestSuite) TestPollDrawByMajority() {
	_, poll := s.openPoll(500)

	s.vote(poll.ID, models.DrawWinnerID, "carol")
	s.vote(poll.ID, models.DrawWinnerID, "dave")
	output := s.vote(poll.ID, models.DrawWinnerID, "alice")

	s.True(output.Resolved)
	s.Equal(models.DrawWinnerID, output.Duel.WinnerID)
	s.Equal(models.StartingCredits, s.balance("alice"))
	s.Equal(models.StartingCredits, s.balance("bob"))
}

func (s *DuelServiceTestSuite) TestCastVoteRejections() {
	_, poll := s.openPoll(500)

	_, err := s.service.CastVote(s.ctx, &CastVoteInput{
		RoomID: testRoomID, PollID: poll.ID, Option: "carol", UserID: "dave",
	})
	s.Equal(ErrInvalidOption, err)

	_, err = s.service.CastVote(s.ctx, &CastVoteInput{
		RoomID: testRoomID, PollID: poll.ID, Option: "alice", UserID: "mallory",
	})
	s.Equal(ErrNotRoomMember, err)
}

func (s *DuelServiceTestSuite) TestResolveDuelDuringPollRemovesPoll() {
	duel, poll := s.openPoll(500)
	s.vote(poll.ID, "bob", "carol")

	_, err := s.service.ResolveDuel(s.ctx, &ResolveDuelInput{
		RoomID: testRoomID, DuelID: duel.ID, WinnerID: "bob", ResolvedBy: "owner",
	})
	s.Require().NoError(err)

	s.False(s.mr.Exists(keyspace.Poll(testRoomID, poll.ID)))
	s.Equal(models.StartingCredits+500, s.balance("bob"))

	_, err = s.service.CastVote(s.ctx, &CastVoteInput{
		RoomID: testRoomID, PollID: poll.ID, Option: "bob", UserID: "dave",
	})
	s.True(errors.Is(err, ledger.ErrPollNotFound))
}

func (s *DuelServiceTestSuite) TestEscalateExpiredDuels() {
	// alice and bob fight without the admin
	bystanders := s.startDuel(100)

	adminDuel, err := s.service.CreateDuel(s.ctx, &CreateDuelInput{
		RoomID: testRoomID, Title: "Shots race", ChallengerID: "owner", OpponentID: "carol",
		Wager: 100, Duration: time.Hour,
	})
	s.Require().NoError(err)
	_, err = s.service.AcceptDuel(s.ctx, &AcceptDuelInput{RoomID: testRoomID, DuelID: adminDuel.Duel.ID, UserID: "carol"})
	s.Require().NoError(err)

	later, err := s.service.CreateDuel(s.ctx, &CreateDuelInput{
		RoomID: testRoomID, Title: "Arm wrestling", ChallengerID: "dave", OpponentID: "owner",
		Wager: 100, Duration: 3 * time.Hour,
	})
	s.Require().NoError(err)
	_, err = s.service.AcceptDuel(s.ctx, &AcceptDuelInput{RoomID: testRoomID, DuelID: later.Duel.ID, UserID: "owner"})
	s.Require().NoError(err)

	// Nothing is overdue yet
	output, err := s.service.EscalateExpiredDuels(s.ctx, &EscalateExpiredDuelsInput{})
	s.Require().NoError(err)
	s.Empty(output.Polls)
	s.Zero(output.Skipped)

	s.now = s.now.Add(2 * time.Hour)
	output, err = s.service.EscalateExpiredDuels(s.ctx, &EscalateExpiredDuelsInput{})
	s.Require().NoError(err)
	s.Require().Len(output.Polls, 1)
	s.Equal(adminDuel.Duel.ID, output.Polls[0].DuelID)
	s.Equal(1, output.Skipped)

	got, err := s.service.GetDuel(s.ctx, &GetDuelInput{RoomID: testRoomID, DuelID: adminDuel.Duel.ID})
	s.Require().NoError(err)
	s.Equal(models.DuelStatusInPoll, got.Duel.Status)

	got, err = s.service.GetDuel(s.ctx, &GetDuelInput{RoomID: testRoomID, DuelID: bystanders.ID})
	s.Require().NoError(err)
	s.Equal(models.DuelStatusInProgress, got.Duel.Status)

	// A second sweep opens nothing new and still leaves the bystanders alone
	output, err = s.service.EscalateExpiredDuels(s.ctx, &EscalateExpiredDuelsInput{})
	s.Require().NoError(err)
	s.Empty(output.Polls)
	s.Equal(1, output.Skipped)
}

func (s *DuelServiceTestSuite) TestListDuels() {
	s.createDuel(10)
	s.startDuel(20)

	output, err := s.service.ListDuels(s.ctx, &ListDuelsInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Len(output.Duels, 2)
}

func (s *DuelServiceTestSuite) TestAnnouncementsFallBackToIDs() {
	mockUsers := userMocks.NewMockService(s.mockCtrl)
	mockUsers.EXPECT().GetUsers(gomock.Any(), gomock.Any()).Return(nil, errors.New("profiles unavailable")).AnyTimes()

	svc, err := New(&Config{
		LedgerRepo:       s.ledger,
		ChatService:      s.chat,
		MessagingService: s.messaging,
		UserService:      mockUsers,
		Clock:            s.mockClock,
		UUIDGenerator:    s.mockUUID,
	})
	s.Require().NoError(err)
	s.service = svc

	_, poll := s.openPoll(100)
	s.Equal("Who won: alice or bob?", poll.Question)

	s.vote(poll.ID, "alice", "carol")
	s.Contains(s.messages(), "carol voted for alice")
}
