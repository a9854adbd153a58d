package messaging

import (
	"github.com/KirkDiggler/ronda/internal/models"
)

// ErrorType classifies failures shown to users
type ErrorType string

const (
	ErrorTypeInsufficientCredits ErrorType = "insufficient_credits"
	ErrorTypeNotAdmin            ErrorType = "not_admin"
	ErrorTypeNotMember           ErrorType = "not_member"
	ErrorTypeAlreadyResolved     ErrorType = "already_resolved"
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeInvalidInput        ErrorType = "invalid_input"
	ErrorTypeUnknown             ErrorType = "unknown"
)

// Config contains configuration for the messaging service
type Config struct {
	// Seed fixes the flavor line sequence; 0 seeds from the current time
	Seed int64
}

// GetBetResolvedMessageInput contains the settled bet
type GetBetResolvedMessageInput struct {
	// Title is the bet's proposition
	Title string

	// Status is the terminal status the bet was resolved into
	Status models.BetStatus

	// StakerCount is how many members had money on the bet
	StakerCount int

	// TotalPaid is the sum credited back to stakers
	TotalPaid int
}

// GetBetResolvedMessageOutput contains the announcement
type GetBetResolvedMessageOutput struct {
	// Message is the full text to post
	Message string
}

// GetDuelResolvedMessageInput contains the settled duel
type GetDuelResolvedMessageInput struct {
	// Title is the duel's challenge
	Title string

	// WinnerName is the display name of the winner; ignored for a draw
	WinnerName string

	// IsDraw is true when both stakes were refunded
	IsDraw bool

	// Pot is the amount the winner took
	Pot int

	// ByVote is true when the room's majority decided
	ByVote bool
}

// GetDuelResolvedMessageOutput contains the announcement
type GetDuelResolvedMessageOutput struct {
	// Message is the full text to post
	Message string
}

// GetPollOpenedMessageInput contains the two sides of the duel
type GetPollOpenedMessageInput struct {
	ChallengerName string
	OpponentName   string
}

// GetPollOpenedMessageOutput contains the poll question
type GetPollOpenedMessageOutput struct {
	// Question is stored on the poll
	Question string

	// Message is the chat text announcing the poll
	Message string
}

// GetVoteCastMessageInput contains the vote
type GetVoteCastMessageInput struct {
	VoterName  string
	OptionName string
}

// GetVoteCastMessageOutput contains the notice
type GetVoteCastMessageOutput struct {
	// Message is the full text to post
	Message string
}

// GetErrorMessageInput contains parameters for getting an error message
type GetErrorMessageInput struct {
	// ErrorType is the type of error
	ErrorType ErrorType
}

// GetErrorMessageOutput contains the result of getting an error message
type GetErrorMessageOutput struct {
	// Title is a short heading
	Title string

	// Message is the generated message
	Message string
}
