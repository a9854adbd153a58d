package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/redis/go-redis/v9"
)

// maxUpdateRetries bounds how often a conflicting event update is re-run
const maxUpdateRetries = 5

var (
	// ErrEventNotFound is returned when an event is not found
	ErrEventNotFound = errors.New("event not found")

	// ErrEventDecode is returned when a stored event cannot be parsed
	ErrEventDecode = errors.New("malformed event")

	// ErrUpdateConflict is returned when an update keeps losing to concurrent writes
	ErrUpdateConflict = errors.New("event update aborted after repeated conflicts")
)

// Config holds configuration for the Redis event repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed event repository
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

// SaveEvent persists an event and indexes it by start date
func (r *redisRepository) SaveEvent(ctx context.Context, input *SaveEventInput) error {
	if input == nil || input.Event == nil {
		return errors.New("input and event cannot be nil")
	}

	event := input.Event
	if event.ID == "" || event.RoomID == "" {
		return errors.New("event ID and room ID cannot be empty")
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return queueSave(ctx, pipe, event)
	})
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}

// GetEvent retrieves an event by ID
func (r *redisRepository) GetEvent(ctx context.Context, input *GetEventInput) (*models.Event, error) {
	if input == nil || input.RoomID == "" || input.EventID == "" {
		return nil, errors.New("input, room ID and event ID cannot be empty")
	}

	return getEvent(ctx, r.client, input.RoomID, input.EventID)
}

// ListEvents retrieves a room's events ordered by start date
func (r *redisRepository) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	eventIDs, err := r.client.ZRange(ctx, keyspace.RoomEvents(input.RoomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get event IDs for room: %w", err)
	}

	// If there are no events, return an empty slice
	if len(eventIDs) == 0 {
		return &ListEventsOutput{
			Events: []*models.Event{},
		}, nil
	}

	// Get all events in a single pipeline
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(eventIDs))
	for i, id := range eventIDs {
		cmds[i] = pipe.Get(ctx, keyspace.Event(input.RoomID, id))
	}

	// Execute the pipeline
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	events := make([]*models.Event, 0, len(cmds))
	for i, cmd := range cmds {
		eventJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get event: %w", err)
		}

		var event models.Event
		if err := json.Unmarshal([]byte(eventJSON), &event); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrEventDecode, eventIDs[i], err)
		}

		events = append(events, &event)
	}

	return &ListEventsOutput{
		Events: events,
	}, nil
}

// UpdateEvent watches the event, applies the change and writes it back. The
// change is re-applied to fresh data when another writer gets in first.
func (r *redisRepository) UpdateEvent(ctx context.Context, input *UpdateEventInput) (*models.Event, error) {
	if input == nil || input.RoomID == "" || input.EventID == "" || input.Apply == nil {
		return nil, errors.New("input, room ID, event ID and apply function cannot be empty")
	}

	key := keyspace.Event(input.RoomID, input.EventID)
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var updated *models.Event
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			event, err := getEvent(ctx, tx, input.RoomID, input.EventID)
			if err != nil {
				return err
			}

			if err := input.Apply(event); err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return queueSave(ctx, pipe, event)
			})
			if err != nil {
				return err
			}

			updated = event
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, ErrUpdateConflict
}

func getEvent(ctx context.Context, cmd redis.Cmdable, roomID, eventID string) (*models.Event, error) {
	eventJSON, err := cmd.Get(ctx, keyspace.Event(roomID, eventID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	var event models.Event
	if err := json.Unmarshal([]byte(eventJSON), &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventDecode, err)
	}

	return &event, nil
}

func queueSave(ctx context.Context, pipe redis.Pipeliner, event *models.Event) error {
	// Marshal the event to JSON
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe.Set(ctx, keyspace.Event(event.RoomID, event.ID), eventJSON, 0)
	pipe.ZAdd(ctx, keyspace.RoomEvents(event.RoomID), redis.Z{
		Score:  float64(event.StartDate.Unix()),
		Member: event.ID,
	})

	return keyspace.PublishChange(ctx, pipe, event.RoomID, models.ChangeKindEvents)
}
