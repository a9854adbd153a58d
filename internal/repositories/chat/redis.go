package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/redis/go-redis/v9"
)

// ErrMessageDecode is returned when a stored message cannot be parsed
var ErrMessageDecode = errors.New("malformed message")

// Config holds configuration for the Redis chat repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed chat repository
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

// AddMessage stores a message and publishes a change notice for its room
func (r *redisRepository) AddMessage(ctx context.Context, input *AddMessageInput) error {
	if input == nil || input.Message == nil {
		return errors.New("input and message cannot be nil")
	}

	message := input.Message
	if message.ID == "" || message.RoomID == "" {
		return errors.New("message ID and room ID cannot be empty")
	}

	// Marshal the message to JSON
	messageJSON, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// Store the message
		pipe.Set(ctx, keyspace.Message(message.RoomID, message.ID), messageJSON, 0)

		// Add to the room's timeline
		pipe.ZAdd(ctx, keyspace.RoomMessages(message.RoomID), redis.Z{
			Score:  float64(message.Timestamp.UnixNano()),
			Member: message.ID,
		})

		return keyspace.PublishChange(ctx, pipe, message.RoomID, models.ChangeKindMessages)
	})
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}

	return nil
}

// ListMessages retrieves the newest messages of a room in chronological order
func (r *redisRepository) ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	if input.Limit < 0 {
		return nil, errors.New("limit cannot be negative")
	}

	// Take the newest IDs first so the limit applies to the tail of the timeline
	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}
	messageIDs, err := r.client.ZRevRange(ctx, keyspace.RoomMessages(input.RoomID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get message IDs for room: %w", err)
	}

	// If there are no messages, return an empty slice
	if len(messageIDs) == 0 {
		return &ListMessagesOutput{
			Messages: []*models.Message{},
		}, nil
	}

	// Get all messages in a single pipeline
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(messageIDs))
	for i, id := range messageIDs {
		cmds[i] = pipe.Get(ctx, keyspace.Message(input.RoomID, id))
	}

	// Execute the pipeline
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	// Walk backwards so the result is oldest first
	messages := make([]*models.Message, 0, len(cmds))
	for i := len(cmds) - 1; i >= 0; i-- {
		messageJSON, err := cmds[i].Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get message: %w", err)
		}

		var message models.Message
		if err := json.Unmarshal([]byte(messageJSON), &message); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMessageDecode, messageIDs[i], err)
		}

		messages = append(messages, &message)
	}

	return &ListMessagesOutput{
		Messages: messages,
	}, nil
}
