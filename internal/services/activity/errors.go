package activity

// ActivityError is a custom error type for check-in and event errors
type ActivityError string

// Error implements the error interface
func (e ActivityError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNotRoomMember    ActivityError = "user is not a member of the room"
	ErrDrinkNotFound    ActivityError = "drink is not in the room's catalog"
	ErrNoActiveEvent    ActivityError = "no event is running"
	ErrEventNotActive   ActivityError = "event is not running"
	ErrNilConfig        ActivityError = "config cannot be nil"
	ErrNilLedgerRepo    ActivityError = "ledger repository cannot be nil"
	ErrNilCheckInRepo   ActivityError = "check-in repository cannot be nil"
	ErrNilEventRepo     ActivityError = "event repository cannot be nil"
	ErrNilClock         ActivityError = "clock cannot be nil"
	ErrNilUUIDGenerator ActivityError = "UUID generator cannot be nil"
)
