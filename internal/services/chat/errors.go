package chat

// ChatError is a custom error type for chat errors
type ChatError string

// Error implements the error interface
func (e ChatError) Error() string {
	return string(e)
}

const (
	ErrNotRoomMember    ChatError = "user is not a member of the room"
	ErrNilConfig        ChatError = "config cannot be nil"
	ErrNilChatRepo      ChatError = "chat repository cannot be nil"
	ErrNilLedgerRepo    ChatError = "ledger repository cannot be nil"
	ErrNilClock         ChatError = "clock cannot be nil"
	ErrNilUUIDGenerator ChatError = "UUID generator cannot be nil"
)
