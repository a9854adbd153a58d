package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrUserNotFound is returned when a profile does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrUserDecode is returned when a stored profile cannot be parsed
	ErrUserDecode = errors.New("malformed user")
)

// Config holds configuration for the Redis user repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed user repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveUser stores a profile as a JSON document
func (r *redisRepository) SaveUser(ctx context.Context, input *SaveUserInput) error {
	if input == nil || input.User == nil {
		return errors.New("input and user cannot be nil")
	}

	if input.User.ID == "" {
		return errors.New("user ID cannot be empty")
	}

	userJSON, err := json.Marshal(input.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.client.Set(ctx, keyspace.User(input.User.ID), userJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// GetUser retrieves a profile by ID
func (r *redisRepository) GetUser(ctx context.Context, input *GetUserInput) (*models.User, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.New("input and user ID cannot be empty")
	}

	userJSON, err := r.client.Get(ctx, keyspace.User(input.UserID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUserDecode, input.UserID, err)
	}

	return &user, nil
}

// GetUsers fetches several profiles with one MGET
func (r *redisRepository) GetUsers(ctx context.Context, input *GetUsersInput) (*GetUsersOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if len(input.UserIDs) == 0 {
		return &GetUsersOutput{Users: []*models.User{}}, nil
	}

	keys := make([]string, len(input.UserIDs))
	for i, id := range input.UserIDs {
		keys[i] = keyspace.User(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	users := make([]*models.User, 0, len(values))
	for i, value := range values {
		// MGET returns nil for missing keys
		userJSON, ok := value.(string)
		if !ok {
			continue
		}

		var user models.User
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUserDecode, input.UserIDs[i], err)
		}
		users = append(users, &user)
	}

	return &GetUsersOutput{Users: users}, nil
}
