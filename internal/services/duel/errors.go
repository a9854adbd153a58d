package duel

// DuelError is a custom error type for duel-related errors
type DuelError string

// Error implements the error interface
func (e DuelError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSelfDuel            DuelError = "you cannot duel yourself"
	ErrNotRoomMember       DuelError = "user is not a member of the room"
	ErrNotRoomAdmin        DuelError = "only the room admin can do that"
	ErrNotDuelOpponent     DuelError = "only the challenged user can answer a duel"
	ErrInvalidDuelState    DuelError = "duel is not in a state that allows this"
	ErrDuelAlreadyResolved DuelError = "duel has already been resolved"
	ErrInvalidWinner       DuelError = "winner must be one of the duelists"
	ErrInvalidOption       DuelError = "option is not on the poll"
	ErrPollClosed          DuelError = "poll is no longer accepting votes"
	ErrNilConfig           DuelError = "config cannot be nil"
	ErrNilLedgerRepo       DuelError = "ledger repository cannot be nil"
	ErrNilChatService      DuelError = "chat service cannot be nil"
	ErrNilMessagingService DuelError = "messaging service cannot be nil"
	ErrNilClock            DuelError = "clock cannot be nil"
	ErrNilUUIDGenerator    DuelError = "UUID generator cannot be nil"
	ErrNilEscalator        DuelError = "escalator cannot be nil"
)
