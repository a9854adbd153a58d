package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/keyspace"
	"github.com/redis/go-redis/v9"
)

// redisTransaction buffers writes made inside RunTransaction and applies them
// in a single MULTI/EXEC. Each attempt gets a fresh transaction.
type redisTransaction struct {
	tx *redis.Tx

	// watched keys, so a key is only WATCHed once per attempt
	watched map[string]bool

	// members of each room at read time, used to drop user_rooms entries
	readMembers map[string][]string

	ops     []func(ctx context.Context, pipe redis.Pipeliner) error
	changes map[string][]models.ChangeKind
	order   []string
}

func newRedisTransaction(tx *redis.Tx) *redisTransaction {
	return &redisTransaction{
		tx:          tx,
		watched:     make(map[string]bool),
		readMembers: make(map[string][]string),
		changes:     make(map[string][]models.ChangeKind),
	}
}

func (t *redisTransaction) watch(ctx context.Context, key string) error {
	if t.watched[key] {
		return nil
	}
	if err := t.tx.Watch(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", key, err)
	}
	t.watched[key] = true
	return nil
}

func (t *redisTransaction) read(ctx context.Context, key string) (string, error) {
	if err := t.watch(ctx, key); err != nil {
		return "", err
	}
	return t.tx.Get(ctx, key).Result()
}

// GetRoom reads and watches a room
func (t *redisTransaction) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	key := keyspace.Room(roomID)
	raw, err := t.read(ctx, key)
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room, err := decodeDocument[models.Room](key, raw)
	if err != nil {
		return nil, err
	}

	t.readMembers[room.ID] = append([]string(nil), room.MemberIDs...)
	return room, nil
}

// GetBet reads and watches a bet
func (t *redisTransaction) GetBet(ctx context.Context, roomID, betID string) (*models.Bet, error) {
	key := keyspace.Bet(roomID, betID)
	raw, err := t.read(ctx, key)
	if err != nil {
		if err == redis.Nil {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return decodeDocument[models.Bet](key, raw)
}

// GetDuel reads and watches a duel
func (t *redisTransaction) GetDuel(ctx context.Context, roomID, duelID string) (*models.Duel, error) {
	key := keyspace.Duel(roomID, duelID)
	raw, err := t.read(ctx, key)
	if err != nil {
		if err == redis.Nil {
			return nil, ErrDuelNotFound
		}
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}

	return decodeDocument[models.Duel](key, raw)
}

// GetPoll reads and watches a poll
func (t *redisTransaction) GetPoll(ctx context.Context, roomID, pollID string) (*models.Poll, error) {
	key := keyspace.Poll(roomID, pollID)
	raw, err := t.read(ctx, key)
	if err != nil {
		if err == redis.Nil {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return decodeDocument[models.Poll](key, raw)
}

// SaveRoom queues a room write
func (t *redisTransaction) SaveRoom(room *models.Room) {
	previous := t.readMembers[room.ID]
	t.queue(room.ID, models.ChangeKindRoom, func(ctx context.Context, pipe redis.Pipeliner) error {
		data, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("failed to marshal room: %w", err)
		}

		pipe.Set(ctx, keyspace.Room(room.ID), data, 0)
		for _, memberID := range room.MemberIDs {
			pipe.SAdd(ctx, keyspace.UserRooms(memberID), room.ID)
		}
		for _, memberID := range previous {
			if !room.IsMember(memberID) {
				pipe.SRem(ctx, keyspace.UserRooms(memberID), room.ID)
			}
		}
		if room.ChannelID != "" {
			pipe.Set(ctx, keyspace.Channel(room.ChannelID), room.ID, 0)
		}
		return nil
	})
}

// SaveBet queues a bet write. Resolved bets expire at ResolvedAt.
func (t *redisTransaction) SaveBet(bet *models.Bet) {
	t.queue(bet.RoomID, models.ChangeKindBets, func(ctx context.Context, pipe redis.Pipeliner) error {
		data, err := json.Marshal(bet)
		if err != nil {
			return fmt.Errorf("failed to marshal bet: %w", err)
		}

		key := keyspace.Bet(bet.RoomID, bet.ID)
		pipe.Set(ctx, key, data, 0)
		if bet.ResolvedAt != nil {
			pipe.ExpireAt(ctx, key, *bet.ResolvedAt)
		}
		pipe.ZAdd(ctx, keyspace.RoomBets(bet.RoomID), redis.Z{
			Score:  indexScore(bet.CreatedAt),
			Member: bet.ID,
		})
		return nil
	})
}

// SaveDuel queues a duel write and keeps the active duel index in step with
// the duel's status
func (t *redisTransaction) SaveDuel(duel *models.Duel) {
	t.queue(duel.RoomID, models.ChangeKindDuels, func(ctx context.Context, pipe redis.Pipeliner) error {
		data, err := json.Marshal(duel)
		if err != nil {
			return fmt.Errorf("failed to marshal duel: %w", err)
		}

		key := keyspace.Duel(duel.RoomID, duel.ID)
		pipe.Set(ctx, key, data, 0)
		if duel.ResolvedAt != nil {
			pipe.ExpireAt(ctx, key, *duel.ResolvedAt)
		}
		pipe.ZAdd(ctx, keyspace.RoomDuels(duel.RoomID), redis.Z{
			Score:  indexScore(duel.StartTime),
			Member: duel.ID,
		})

		member := keyspace.ActiveDuelMember(duel.RoomID, duel.ID)
		if duel.Status == models.DuelStatusInProgress {
			pipe.ZAdd(ctx, keyspace.ActiveDuels(), redis.Z{
				Score:  activeScore(duel.EndTime),
				Member: member,
			})
		} else {
			pipe.ZRem(ctx, keyspace.ActiveDuels(), member)
		}
		return nil
	})
}

// DeleteDuel queues a duel removal
func (t *redisTransaction) DeleteDuel(roomID, duelID string) {
	t.queue(roomID, models.ChangeKindDuels, func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyspace.Duel(roomID, duelID))
		pipe.ZRem(ctx, keyspace.RoomDuels(roomID), duelID)
		pipe.ZRem(ctx, keyspace.ActiveDuels(), keyspace.ActiveDuelMember(roomID, duelID))
		return nil
	})
}

// SavePoll queues a poll write. Polls expire at their ExpiresAt time.
func (t *redisTransaction) SavePoll(poll *models.Poll) {
	t.queue(poll.RoomID, models.ChangeKindPolls, func(ctx context.Context, pipe redis.Pipeliner) error {
		data, err := json.Marshal(poll)
		if err != nil {
			return fmt.Errorf("failed to marshal poll: %w", err)
		}

		key := keyspace.Poll(poll.RoomID, poll.ID)
		pipe.Set(ctx, key, data, 0)
		if !poll.ExpiresAt.IsZero() {
			pipe.ExpireAt(ctx, key, poll.ExpiresAt)
		}
		pipe.ZAdd(ctx, keyspace.RoomPolls(poll.RoomID), redis.Z{
			Score:  indexScore(poll.CreatedAt),
			Member: poll.ID,
		})
		return nil
	})
}

// DeletePoll queues a poll removal
func (t *redisTransaction) DeletePoll(roomID, pollID string) {
	t.queue(roomID, models.ChangeKindPolls, func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyspace.Poll(roomID, pollID))
		pipe.ZRem(ctx, keyspace.RoomPolls(roomID), pollID)
		return nil
	})
}

// AddMessage queues a chat message write
func (t *redisTransaction) AddMessage(message *models.Message) {
	t.queue(message.RoomID, models.ChangeKindMessages, func(ctx context.Context, pipe redis.Pipeliner) error {
		data, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		pipe.Set(ctx, keyspace.Message(message.RoomID, message.ID), data, 0)
		pipe.ZAdd(ctx, keyspace.RoomMessages(message.RoomID), redis.Z{
			Score:  indexScore(message.Timestamp),
			Member: message.ID,
		})
		return nil
	})
}

// AddCheckIn queues a check-in write. Check-ins expire at ExpiresAt.
func (t *redisTransaction) AddCheckIn(checkIn *models.CheckIn) {
	t.queue(checkIn.RoomID, models.ChangeKindCheckIns, func(ctx context.Context, pipe redis.Pipeliner) error {
		data, err := json.Marshal(checkIn)
		if err != nil {
			return fmt.Errorf("failed to marshal check-in: %w", err)
		}

		key := keyspace.CheckIn(checkIn.RoomID, checkIn.ID)
		pipe.Set(ctx, key, data, 0)
		if !checkIn.ExpiresAt.IsZero() {
			pipe.ExpireAt(ctx, key, checkIn.ExpiresAt)
		}
		pipe.ZAdd(ctx, keyspace.RoomCheckIns(checkIn.RoomID), redis.Z{
			Score:  indexScore(checkIn.Timestamp),
			Member: checkIn.ID,
		})
		return nil
	})
}

func (t *redisTransaction) queue(roomID string, kind models.ChangeKind, op func(ctx context.Context, pipe redis.Pipeliner) error) {
	t.ops = append(t.ops, op)

	kinds, seen := t.changes[roomID]
	if !seen {
		t.order = append(t.order, roomID)
	}
	for _, k := range kinds {
		if k == kind {
			return
		}
	}
	t.changes[roomID] = append(kinds, kind)
}

// commit applies every queued write and publishes one change notice per room.
// Nothing is sent when no writes were queued.
func (t *redisTransaction) commit(ctx context.Context) error {
	if len(t.ops) == 0 {
		return nil
	}

	_, err := t.tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range t.ops {
			if err := op(ctx, pipe); err != nil {
				return err
			}
		}
		for _, roomID := range t.order {
			if err := keyspace.PublishChange(ctx, pipe, roomID, t.changes[roomID]...); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// activeScore orders the active duel index by end time in seconds
func activeScore(t time.Time) float64 {
	return float64(t.Unix())
}
