package bet

// BetError is a custom error type for bet-related errors
type BetError string

// Error implements the error interface
func (e BetError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrBetNotPending       BetError = "bet is no longer pending"
	ErrInvalidResolution   BetError = "bets can only be resolved as won, lost or cancelled"
	ErrNotRoomAdmin        BetError = "only the room admin can resolve bets"
	ErrNotRoomMember       BetError = "user is not a member of the room"
	ErrDeadlinePassed      BetError = "bet deadline is in the past"
	ErrNilConfig           BetError = "config cannot be nil"
	ErrNilLedgerRepo       BetError = "ledger repository cannot be nil"
	ErrNilChatService      BetError = "chat service cannot be nil"
	ErrNilMessagingService BetError = "messaging service cannot be nil"
	ErrNilClock            BetError = "clock cannot be nil"
	ErrNilUUIDGenerator    BetError = "UUID generator cannot be nil"
)
