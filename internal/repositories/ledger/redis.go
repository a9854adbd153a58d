package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/redis/go-redis/v9"
)

// DefaultMaxTxRetries is how many times a conflicting transaction is re-run
const DefaultMaxTxRetries = 5

var (
	// ErrRoomNotFound is returned when a room is not found
	ErrRoomNotFound = errors.New("room not found")

	// ErrBetNotFound is returned when a bet is not found
	ErrBetNotFound = errors.New("bet not found")

	// ErrDuelNotFound is returned when a duel is not found
	ErrDuelNotFound = errors.New("duel not found")

	// ErrPollNotFound is returned when a poll is not found
	ErrPollNotFound = errors.New("poll not found")

	// ErrDecode is returned when a stored document cannot be parsed
	ErrDecode = errors.New("malformed document")

	// ErrInviteCodeTaken is returned when a new room's invite code is in use
	ErrInviteCodeTaken = errors.New("invite code already in use")

	// ErrTransactionConflict is returned when a transaction keeps conflicting
	// with concurrent writes after every retry
	ErrTransactionConflict = errors.New("transaction aborted after repeated conflicts")
)

// Config holds configuration for the Redis ledger repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxTxRetries bounds how often a conflicting transaction is re-run
	MaxTxRetries int
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client       *redis.Client
	maxTxRetries int
}

// NewRedis creates a new Redis-backed ledger repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	retries := cfg.MaxTxRetries
	if retries <= 0 {
		retries = DefaultMaxTxRetries
	}

	return &redisRepository{
		client:       cfg.RedisClient,
		maxTxRetries: retries,
	}, nil
}

// RunTransaction executes the input's Apply function under optimistic locking
func (r *redisRepository) RunTransaction(ctx context.Context, input *RunTransactionInput) error {
	if input == nil || input.Apply == nil {
		return errors.New("input and apply function cannot be nil")
	}

	for attempt := 0; attempt < r.maxTxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			txn := newRedisTransaction(tx)
			if err := input.Apply(ctx, txn); err != nil {
				return err
			}
			return txn.commit(ctx)
		})
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return ErrTransactionConflict
}

// CreateRoom persists a new room, its invite code and membership indexes
func (r *redisRepository) CreateRoom(ctx context.Context, input *CreateRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}

	room := input.Room
	if room.ID == "" {
		return errors.New("room ID cannot be empty")
	}

	if room.InviteCode == "" {
		return errors.New("invite code cannot be empty")
	}

	claimed, err := r.client.SetNX(ctx, keyspace.Invite(room.InviteCode), room.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim invite code: %w", err)
	}
	if !claimed {
		return ErrInviteCodeTaken
	}

	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyspace.Room(room.ID), roomJSON, 0)
		for _, memberID := range room.MemberIDs {
			pipe.SAdd(ctx, keyspace.UserRooms(memberID), room.ID)
		}
		if room.ChannelID != "" {
			pipe.Set(ctx, keyspace.Channel(room.ChannelID), room.ID, 0)
		}
		return keyspace.PublishChange(ctx, pipe, room.ID, models.ChangeKindRoom)
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// GetRoom retrieves a room by ID
func (r *redisRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	return getDocument[models.Room](ctx, r.client, keyspace.Room(input.RoomID), ErrRoomNotFound)
}

// GetRoomByInviteCode retrieves the room an invite code belongs to
func (r *redisRepository) GetRoomByInviteCode(ctx context.Context, input *GetRoomByInviteCodeInput) (*models.Room, error) {
	if input == nil || input.InviteCode == "" {
		return nil, errors.New("input and invite code cannot be empty")
	}

	return r.getRoomByPointer(ctx, keyspace.Invite(input.InviteCode))
}

// GetRoomByChannel retrieves the room linked to a Discord channel
func (r *redisRepository) GetRoomByChannel(ctx context.Context, input *GetRoomByChannelInput) (*models.Room, error) {
	if input == nil || input.ChannelID == "" {
		return nil, errors.New("input and channel ID cannot be empty")
	}

	return r.getRoomByPointer(ctx, keyspace.Channel(input.ChannelID))
}

func (r *redisRepository) getRoomByPointer(ctx context.Context, key string) (*models.Room, error) {
	roomID, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room ID: %w", err)
	}

	return r.GetRoom(ctx, &GetRoomInput{RoomID: roomID})
}

// ListRoomsForUser retrieves every room the user is a member of
func (r *redisRepository) ListRoomsForUser(ctx context.Context, input *ListRoomsForUserInput) (*ListRoomsForUserOutput, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.New("input and user ID cannot be empty")
	}

	roomIDs, err := r.client.SMembers(ctx, keyspace.UserRooms(input.UserID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room IDs for user: %w", err)
	}

	keys := make([]string, len(roomIDs))
	for i, id := range roomIDs {
		keys[i] = keyspace.Room(id)
	}

	rooms, err := getDocuments[models.Room](ctx, r.client, keys)
	if err != nil {
		return nil, err
	}

	return &ListRoomsForUserOutput{Rooms: rooms}, nil
}

// GetBet retrieves a bet by ID
func (r *redisRepository) GetBet(ctx context.Context, input *GetBetInput) (*models.Bet, error) {
	if input == nil || input.RoomID == "" || input.BetID == "" {
		return nil, errors.New("input, room ID and bet ID cannot be empty")
	}

	return getDocument[models.Bet](ctx, r.client, keyspace.Bet(input.RoomID, input.BetID), ErrBetNotFound)
}

// ListBets retrieves a room's bets, oldest first. Bets removed by expiry are
// dropped from the index as they are found.
func (r *redisRepository) ListBets(ctx context.Context, input *ListBetsInput) (*ListBetsOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	bets, err := listIndexed[models.Bet](ctx, r.client, keyspace.RoomBets(input.RoomID), func(id string) string {
		return keyspace.Bet(input.RoomID, id)
	})
	if err != nil {
		return nil, err
	}

	return &ListBetsOutput{Bets: bets}, nil
}

// GetDuel retrieves a duel by ID
func (r *redisRepository) GetDuel(ctx context.Context, input *GetDuelInput) (*models.Duel, error) {
	if input == nil || input.RoomID == "" || input.DuelID == "" {
		return nil, errors.New("input, room ID and duel ID cannot be empty")
	}

	return getDocument[models.Duel](ctx, r.client, keyspace.Duel(input.RoomID, input.DuelID), ErrDuelNotFound)
}

// ListDuels retrieves a room's duels, oldest first
func (r *redisRepository) ListDuels(ctx context.Context, input *ListDuelsInput) (*ListDuelsOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	duels, err := listIndexed[models.Duel](ctx, r.client, keyspace.RoomDuels(input.RoomID), func(id string) string {
		return keyspace.Duel(input.RoomID, id)
	})
	if err != nil {
		return nil, err
	}

	return &ListDuelsOutput{Duels: duels}, nil
}

// ListExpiredDuels retrieves in-progress duels whose end time has passed
func (r *redisRepository) ListExpiredDuels(ctx context.Context, input *ListExpiredDuelsInput) (*ListExpiredDuelsOutput, error) {
	if input == nil || input.Before.IsZero() {
		return nil, errors.New("input and cutoff time cannot be empty")
	}

	members, err := r.client.ZRangeByScore(ctx, keyspace.ActiveDuels(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(input.Before.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get expired duel IDs: %w", err)
	}

	keys := make([]string, 0, len(members))
	for _, member := range members {
		roomID, duelID, ok := keyspace.ParseActiveDuelMember(member)
		if !ok {
			continue
		}
		keys = append(keys, keyspace.Duel(roomID, duelID))
	}

	duels, err := getDocuments[models.Duel](ctx, r.client, keys)
	if err != nil {
		return nil, err
	}

	return &ListExpiredDuelsOutput{Duels: duels}, nil
}

// GetPoll retrieves a poll by ID
func (r *redisRepository) GetPoll(ctx context.Context, input *GetPollInput) (*models.Poll, error) {
	if input == nil || input.RoomID == "" || input.PollID == "" {
		return nil, errors.New("input, room ID and poll ID cannot be empty")
	}

	return getDocument[models.Poll](ctx, r.client, keyspace.Poll(input.RoomID, input.PollID), ErrPollNotFound)
}

// ListPolls retrieves a room's open polls, oldest first
func (r *redisRepository) ListPolls(ctx context.Context, input *ListPollsInput) (*ListPollsOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	polls, err := listIndexed[models.Poll](ctx, r.client, keyspace.RoomPolls(input.RoomID), func(id string) string {
		return keyspace.Poll(input.RoomID, id)
	})
	if err != nil {
		return nil, err
	}

	return &ListPollsOutput{Polls: polls}, nil
}

// Subscribe streams change notices for a room until the context is done or
// Close is called
func (r *redisRepository) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	pubsub := r.client.Subscribe(ctx, keyspace.Changes(input.RoomID))

	// Wait for the subscription to be confirmed so no notice published after
	// we return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room changes: %w", err)
	}

	notices := make(chan *models.ChangeNotice)
	go func() {
		defer close(notices)
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var notice models.ChangeNotice
				if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
					continue
				}
				select {
				case notices <- &notice:
				case <-ctx.Done():
					_ = pubsub.Close()
					return
				}
			}
		}
	}()

	return &SubscribeOutput{
		Notices: notices,
		Close:   pubsub.Close,
	}, nil
}

// getDocument reads and decodes a single JSON document
func getDocument[T any](ctx context.Context, cmd redis.Cmdable, key string, notFound error) (*T, error) {
	raw, err := cmd.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return decodeDocument[T](key, raw)
}

func decodeDocument[T any](key, raw string) (*T, error) {
	var doc T
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return &doc, nil
}

// getDocuments reads several documents in one pipeline, preserving order and
// skipping documents that no longer exist
func getDocuments[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	docs := make([]*T, 0, len(keys))
	if len(keys) == 0 {
		return docs, nil
	}

	pipe := client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}

	// redis.Nil from individual commands is handled below
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}

	for i, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Document expired or was deleted between reading the index and fetching it
				continue
			}
			return nil, fmt.Errorf("failed to get %s: %w", keys[i], err)
		}

		doc, err := decodeDocument[T](keys[i], raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// listIndexed reads every document referenced by a sorted-set index. Index
// entries whose document has expired are removed.
func listIndexed[T any](ctx context.Context, client *redis.Client, indexKey string, docKey func(id string) string) ([]*T, error) {
	ids, err := client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", indexKey, err)
	}

	docs := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return docs, nil
	}

	pipe := client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, docKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get documents for %s: %w", indexKey, err)
	}

	var stale []interface{}
	for i, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				stale = append(stale, ids[i])
				continue
			}
			return nil, fmt.Errorf("failed to get %s: %w", docKey(ids[i]), err)
		}

		doc, err := decodeDocument[T](docKey(ids[i]), raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if len(stale) > 0 {
		// Best effort, a failed cleanup is retried on the next listing
		client.ZRem(ctx, indexKey, stale...)
	}

	return docs, nil
}

// indexScore orders documents inside an index
func indexScore(t time.Time) float64 {
	return float64(t.UnixNano())
}
