package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/ronda/internal/common/clock/mocks"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testRoomID = "room-1"

type FeedServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	mr        *miniredis.Miniredis
	client    *redis.Client
	ledger    ledger.Repository
	metrics   *metrics.Metrics
	service   *service
	ctx       context.Context
	cancel    context.CancelFunc

	testTime time.Time
}

func (s *FeedServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Second)

	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ledgerRepo, err := ledger.NewRedis(&ledger.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.ledger = ledgerRepo

	s.metrics = metrics.New()
	svc, err := New(&Config{
		LedgerRepo: ledgerRepo,
		Clock:      s.mockClock,
		Metrics:    s.metrics,
	})
	s.Require().NoError(err)
	s.service = svc

	room := &models.Room{
		ID:          testRoomID,
		Title:       "Friday Drinks",
		OwnerID:     "owner",
		InviteCode:  "FEED01",
		UserCredits: map[string]int{},
	}
	room.AddMember("owner")
	s.Require().NoError(s.ledger.CreateRoom(s.ctx, &ledger.CreateRoomInput{Room: room}))
}

func (s *FeedServiceTestSuite) TearDownTest() {
	s.cancel()
	s.mockCtrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestFeedServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FeedServiceTestSuite))
}

// addBet commits a bet and deducts its stake from the owner
func (s *FeedServiceTestSuite) addBet(id string) {
	err := s.ledger.RunTransaction(s.ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			room, err := tx.GetRoom(ctx, testRoomID)
			if err != nil {
				return err
			}
			if err := room.Deduct("owner", 10); err != nil {
				return err
			}
			tx.SaveRoom(room)
			tx.SaveBet(&models.Bet{
				ID:             id,
				RoomID:         testRoomID,
				Title:          "Bet " + id,
				ProposerUserID: "owner",
				TargetUserID:   "owner",
				Odds:           2,
				Status:         models.BetStatusPending,
				Wagers:         map[string]int{"owner": 10},
				CreatedAt:      s.testTime,
			})
			return nil
		},
	})
	s.Require().NoError(err)
}

func (s *FeedServiceTestSuite) next(snapshots <-chan *models.RoomSnapshot) *models.RoomSnapshot {
	select {
	case snapshot, ok := <-snapshots:
		s.Require().True(ok, "feed closed")
		return snapshot
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for snapshot")
		return nil
	}
}

func (s *FeedServiceTestSuite) TestSubscribeSendsInitialSnapshot() {
	output, err := s.service.Subscribe(s.ctx, &SubscribeInput{RoomID: testRoomID})
	s.Require().NoError(err)

	snapshot := s.next(output.Snapshots)
	s.Equal(testRoomID, snapshot.Room.ID)
	s.Empty(snapshot.Bets)
	s.Empty(snapshot.Kinds)
	s.Equal(s.testTime, snapshot.Timestamp)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.FeedSubscribers))
}

func (s *FeedServiceTestSuite) TestSubscribeReloadsOnChange() {
	output, err := s.service.Subscribe(s.ctx, &SubscribeInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.next(output.Snapshots)

	s.addBet("bet-1")

	snapshot := s.next(output.Snapshots)
	s.Require().Len(snapshot.Bets, 1)
	s.Equal("bet-1", snapshot.Bets[0].ID)
	s.ElementsMatch([]models.ChangeKind{models.ChangeKindRoom, models.ChangeKindBets}, snapshot.Kinds)
	s.Equal(models.StartingCredits-10, snapshot.Room.Balance("owner"))
}

func (s *FeedServiceTestSuite) TestSlowConsumerSeesLatestState() {
	output, err := s.service.Subscribe(s.ctx, &SubscribeInput{RoomID: testRoomID})
	s.Require().NoError(err)

	// Commit several changes without reading; intermediate snapshots may be dropped
	s.addBet("bet-1")
	s.addBet("bet-2")
	s.addBet("bet-3")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snapshot, ok := <-output.Snapshots:
			s.Require().True(ok)
			if len(snapshot.Bets) == 3 {
				s.Equal(models.StartingCredits-30, snapshot.Room.Balance("owner"))
				return
			}
		case <-deadline:
			s.FailNow("never saw the latest snapshot")
		}
	}
}

func (s *FeedServiceTestSuite) TestSubscribeClosesOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	output, err := s.service.Subscribe(ctx, &SubscribeInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.next(output.Snapshots)

	cancel()

	select {
	case _, ok := <-output.Snapshots:
		s.False(ok)
	case <-time.After(2 * time.Second):
		s.FailNow("feed did not close")
	}

	s.Eventually(func() bool {
		return testutil.ToFloat64(s.metrics.FeedSubscribers) == 0
	}, time.Second, 10*time.Millisecond)
}

func (s *FeedServiceTestSuite) TestSubscribeUnknownRoom() {
	_, err := s.service.Subscribe(s.ctx, &SubscribeInput{RoomID: "missing"})
	s.True(errors.Is(err, ledger.ErrRoomNotFound))
	s.Equal(float64(0), testutil.ToFloat64(s.metrics.FeedSubscribers))
}

func (s *FeedServiceTestSuite) TestGetSnapshot() {
	s.addBet("bet-1")

	output, err := s.service.GetSnapshot(s.ctx, &GetSnapshotInput{RoomID: testRoomID})
	s.Require().NoError(err)
	s.Len(output.Snapshot.Bets, 1)
}
