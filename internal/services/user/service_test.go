package user

import (
	"context"
	"errors"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/ronda/internal/common/clock/mocks"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	userRepo "github.com/KirkDiggler/ronda/internal/repositories/user"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	mr        *miniredis.Miniredis
	client    *redis.Client
	service   *service
	ctx       context.Context
	now       time.Time
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.ctx = context.Background()

	s.now = time.Date(2025, 7, 21, 18, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo, err := userRepo.NewRedis(&userRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	svc, err := New(&Config{
		UserRepo: repo,
		Clock:    s.mockClock,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.Equal(ErrNilConfig, err)

	_, err = New(&Config{Clock: s.mockClock})
	s.Equal(ErrNilUserRepo, err)
}

func (s *UserServiceTestSuite) TestUpsertProfileMerges() {
	created, err := s.service.UpsertProfile(s.ctx, &UpsertProfileInput{
		UserID:         "alice",
		AcceptedPolicy: true,
	})
	s.Require().NoError(err)
	s.True(created.User.HasAcceptedPolicy)
	s.False(created.User.HasCompletedProfile)
	s.Equal(s.now, created.User.CreatedAt)

	s.now = s.now.Add(time.Minute)
	updated, err := s.service.UpsertProfile(s.ctx, &UpsertProfileInput{
		UserID:   "alice",
		Username: "Alice",
		Age:      29,
	})
	s.Require().NoError(err)
	s.Equal("Alice", updated.User.Username)
	s.Equal(29, updated.User.Age)
	s.True(updated.User.HasAcceptedPolicy)
	s.True(updated.User.HasCompletedProfile)
	s.Equal(s.now.Add(-time.Minute), updated.User.CreatedAt)
	s.Equal(s.now, updated.User.UpdatedAt)

	got, err := s.service.GetUser(s.ctx, &GetUserInput{UserID: "alice"})
	s.Require().NoError(err)
	s.Equal("Alice", got.User.Username)
}

func (s *UserServiceTestSuite) TestUpsertProfileValidation() {
	_, err := s.service.UpsertProfile(s.ctx, &UpsertProfileInput{UserID: "kid", Username: "Kid", Age: 16})
	s.True(errors.Is(err, validation.ErrInvalidInput))

	_, err = s.service.UpsertProfile(s.ctx, &UpsertProfileInput{Username: "Nobody"})
	s.True(errors.Is(err, validation.ErrInvalidInput))
}

func (s *UserServiceTestSuite) TestGetUsersFallsBackToID() {
	_, err := s.service.UpsertProfile(s.ctx, &UpsertProfileInput{UserID: "alice", Username: "Alice"})
	s.Require().NoError(err)

	// bob has a profile without a username
	_, err = s.service.UpsertProfile(s.ctx, &UpsertProfileInput{UserID: "bob", AcceptedPolicy: true})
	s.Require().NoError(err)

	output, err := s.service.GetUsers(s.ctx, &GetUsersInput{UserIDs: []string{"alice", "bob", "carol"}})
	s.Require().NoError(err)
	s.Len(output.Users, 2)
	s.Equal(map[string]string{"alice": "Alice", "bob": "bob", "carol": "carol"}, output.Names)
}

func (s *UserServiceTestSuite) TestDisplayNames() {
	_, err := s.service.UpsertProfile(s.ctx, &UpsertProfileInput{UserID: "alice", Username: "Alice"})
	s.Require().NoError(err)

	s.Equal(map[string]string{"alice": "Alice", "draw": "draw"}, DisplayNames(s.ctx, s.service, "alice", "draw"))
	s.Equal(map[string]string{"alice": "alice"}, DisplayNames(s.ctx, nil, "alice"))

	// A broken store degrades to the raw IDs
	s.mr.Close()
	s.Equal(map[string]string{"alice": "alice"}, DisplayNames(s.ctx, s.service, "alice"))
}
