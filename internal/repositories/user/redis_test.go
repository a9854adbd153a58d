package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) save(id, username string) {
	err := s.repo.SaveUser(context.Background(), &SaveUserInput{
		User: &models.User{
			ID:        id,
			Username:  username,
			CreatedAt: s.testNow,
			UpdatedAt: s.testNow,
		},
	})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetUser() {
	s.save("alice", "Alice")

	user, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: "alice"})
	s.Require().NoError(err)
	s.Equal("Alice", user.Username)
	s.Equal(s.testNow, user.CreatedAt)

	// Saving again replaces the document
	s.save("alice", "Ali")
	user, err = s.repo.GetUser(context.Background(), &GetUserInput{UserID: "alice"})
	s.Require().NoError(err)
	s.Equal("Ali", user.Username)
}

func (s *RedisRepositoryTestSuite) TestGetUserNotFound() {
	_, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: "ghost"})
	s.Equal(ErrUserNotFound, err)
}

func (s *RedisRepositoryTestSuite) TestGetUsersSkipsMissing() {
	s.save("alice", "Alice")
	s.save("carol", "Carol")

	output, err := s.repo.GetUsers(context.Background(), &GetUsersInput{
		UserIDs: []string{"carol", "ghost", "alice"},
	})
	s.Require().NoError(err)
	s.Require().Len(output.Users, 2)
	s.Equal("carol", output.Users[0].ID)
	s.Equal("alice", output.Users[1].ID)

	empty, err := s.repo.GetUsers(context.Background(), &GetUsersInput{})
	s.Require().NoError(err)
	s.Empty(empty.Users)
}

func (s *RedisRepositoryTestSuite) TestMalformedUser() {
	s.Require().NoError(s.mr.Set(keyspace.User("broken"), "{not json"))

	_, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: "broken"})
	s.True(errors.Is(err, ErrUserDecode))

	_, err = s.repo.GetUsers(context.Background(), &GetUsersInput{UserIDs: []string{"broken"}})
	s.True(errors.Is(err, ErrUserDecode))
}

func (s *RedisRepositoryTestSuite) TestValidation() {
	s.Error(s.repo.SaveUser(context.Background(), nil))
	s.Error(s.repo.SaveUser(context.Background(), &SaveUserInput{User: &models.User{}}))

	_, err := s.repo.GetUser(context.Background(), &GetUserInput{})
	s.Error(err)
}
