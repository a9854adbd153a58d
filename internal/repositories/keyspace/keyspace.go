// Package keyspace names every Redis key and channel used by the repositories,
// so documents written in one repository's transaction can be read by another.
package keyspace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix      = "room:"
	userRoomsKeyPrefix = "user_rooms:"
	inviteKeyPrefix    = "invite:"
	channelKeyPrefix   = "channel:"
	userKeyPrefix      = "user:"

	betKeyPrefix      = "bet:"
	duelKeyPrefix     = "duel:"
	pollKeyPrefix     = "poll:"
	messageKeyPrefix  = "message:"
	checkInKeyPrefix  = "checkin:"
	eventKeyPrefix    = "event:"
	changesChanPrefix = "room_changes:"
)

// Room is the document key of a room
func Room(roomID string) string { return roomKeyPrefix + roomID }

// UserRooms is the set of room IDs a user belongs to
func UserRooms(userID string) string { return userRoomsKeyPrefix + userID }

// Invite maps an invite code to a room ID
func Invite(code string) string { return inviteKeyPrefix + code }

// Channel maps a Discord channel to a room ID
func Channel(channelID string) string { return channelKeyPrefix + channelID }

// User is the document key of a user profile
func User(userID string) string { return userKeyPrefix + userID }

// Bet is the document key of a bet
func Bet(roomID, betID string) string { return fmt.Sprintf("%s%s:%s", betKeyPrefix, roomID, betID) }

// RoomBets is the sorted set indexing a room's bets by creation time
func RoomBets(roomID string) string { return "room_bets:" + roomID }

// Duel is the document key of a duel
func Duel(roomID, duelID string) string { return fmt.Sprintf("%s%s:%s", duelKeyPrefix, roomID, duelID) }

// RoomDuels is the sorted set indexing a room's duels by start time
func RoomDuels(roomID string) string { return "room_duels:" + roomID }

// ActiveDuels is the sorted set of in-progress duels scored by end time
func ActiveDuels() string { return "active_duels" }

// ActiveDuelMember is the ActiveDuels member for a duel
func ActiveDuelMember(roomID, duelID string) string { return roomID + ":" + duelID }

// ParseActiveDuelMember splits an ActiveDuels member into room and duel IDs
func ParseActiveDuelMember(member string) (roomID, duelID string, ok bool) {
	roomID, duelID, ok = strings.Cut(member, ":")
	return roomID, duelID, ok && roomID != "" && duelID != ""
}

// Poll is the document key of a poll
func Poll(roomID, pollID string) string { return fmt.Sprintf("%s%s:%s", pollKeyPrefix, roomID, pollID) }

// RoomPolls is the sorted set indexing a room's polls by creation time
func RoomPolls(roomID string) string { return "room_polls:" + roomID }

// Message is the document key of a chat message
func Message(roomID, messageID string) string {
	return fmt.Sprintf("%s%s:%s", messageKeyPrefix, roomID, messageID)
}

// RoomMessages is the sorted set indexing a room's messages by timestamp
func RoomMessages(roomID string) string { return "room_messages:" + roomID }

// CheckIn is the document key of a check-in
func CheckIn(roomID, checkInID string) string {
	return fmt.Sprintf("%s%s:%s", checkInKeyPrefix, roomID, checkInID)
}

// RoomCheckIns is the sorted set indexing a room's check-ins by timestamp
func RoomCheckIns(roomID string) string { return "room_checkins:" + roomID }

// Event is the document key of an event
func Event(roomID, eventID string) string {
	return fmt.Sprintf("%s%s:%s", eventKeyPrefix, roomID, eventID)
}

// RoomEvents is the sorted set indexing a room's events by start date
func RoomEvents(roomID string) string { return "room_events:" + roomID }

// Changes is the pub/sub channel carrying a room's change notices
func Changes(roomID string) string { return changesChanPrefix + roomID }

// PublishChange queues a change notice on the given pipeline or client. When
// cmd is a transaction pipeline the notice is only delivered if EXEC succeeds.
func PublishChange(ctx context.Context, cmd redis.Cmdable, roomID string, kinds ...models.ChangeKind) error {
	payload, err := json.Marshal(&models.ChangeNotice{RoomID: roomID, Kinds: kinds})
	if err != nil {
		return fmt.Errorf("failed to marshal change notice: %w", err)
	}
	return cmd.Publish(ctx, Changes(roomID), payload).Err()
}
