package checkin

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
	// ErrCheckInNotFound is returned when a check-in is missing or expired
	ErrCheckInNotFound = errors.New("check-in not found")

	// ErrCheckInDecode is returned when a stored check-in cannot be parsed
	ErrCheckInDecode = errors.New("malformed check-in")
)

// Config holds configuration for the Redis check-in repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed check-in repository
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

// GetCheckIn retrieves a check-in by ID
func (r *redisRepository) GetCheckIn(ctx context.Context, input *GetCheckInInput) (*models.CheckIn, error) {
	if input == nil || input.RoomID == "" || input.CheckInID == "" {
		return nil, errors.New("input, room ID and check-in ID cannot be empty")
	}

	checkInJSON, err := r.client.Get(ctx, keyspace.CheckIn(input.RoomID, input.CheckInID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}

	var checkIn models.CheckIn
	if err := json.Unmarshal([]byte(checkInJSON), &checkIn); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckInDecode, err)
	}

	return &checkIn, nil
}

// ListCheckIns retrieves a room's live check-ins, newest first. Index entries
// whose check-in has expired are removed.
func (r *redisRepository) ListCheckIns(ctx context.Context, input *ListCheckInsInput) (*ListCheckInsOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	indexKey := keyspace.RoomCheckIns(input.RoomID)
	checkInIDs, err := r.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in IDs for room: %w", err)
	}

	// If there are no check-ins, return an empty slice
	if len(checkInIDs) == 0 {
		return &ListCheckInsOutput{
			CheckIns: []*models.CheckIn{},
		}, nil
	}

	// Get all check-ins in a single pipeline
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(checkInIDs))
	for i, id := range checkInIDs {
		cmds[i] = pipe.Get(ctx, keyspace.CheckIn(input.RoomID, id))
	}

	// Execute the pipeline
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get check-ins: %w", err)
	}

	checkIns := make([]*models.CheckIn, 0, len(cmds))
	var expired []interface{}
	for i, cmd := range cmds {
		checkInJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				expired = append(expired, checkInIDs[i])
				continue
			}
			return nil, fmt.Errorf("failed to get check-in: %w", err)
		}

		var checkIn models.CheckIn
		if err := json.Unmarshal([]byte(checkInJSON), &checkIn); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCheckInDecode, checkInIDs[i], err)
		}

		checkIns = append(checkIns, &checkIn)
	}

	// Drop expired entries from the index
	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, indexKey, expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune check-in index: %w", err)
		}
	}

	return &ListCheckInsOutput{
		CheckIns: checkIns,
	}, nil
}
