package room

// RoomError is a custom error type for room-related errors
type RoomError string

// Error implements the error interface
func (e RoomError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNotRoomMember        RoomError = "user is not a member of the room"
	ErrNotRoomAdmin         RoomError = "only the room admin can do that"
	ErrOwnerCannotLeave     RoomError = "the room owner cannot leave the room"
	ErrDrinkNotFound        RoomError = "drink not found in the room catalog"
	ErrDuplicateDrink       RoomError = "drink IDs must be unique"
	ErrRoomIdentifierNeeded RoomError = "room ID or invite code is required"
	ErrInviteCodeExhausted  RoomError = "could not allocate a free invite code"
	ErrNilConfig            RoomError = "config cannot be nil"
	ErrNilLedgerRepo        RoomError = "ledger repository cannot be nil"
	ErrNilClock             RoomError = "clock cannot be nil"
	ErrNilUUIDGenerator     RoomError = "UUID generator cannot be nil"
)
