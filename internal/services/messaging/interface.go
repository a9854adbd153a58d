package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/ronda/internal/services/messaging Service

import "context"

// Service builds the announcement texts posted to room chat
type Service interface {
	// GetBetResolvedMessage returns the announcement for a settled bet
	GetBetResolvedMessage(ctx context.Context, input *GetBetResolvedMessageInput) (*GetBetResolvedMessageOutput, error)

	// GetDuelResolvedMessage returns the announcement for a settled duel
	GetDuelResolvedMessage(ctx context.Context, input *GetDuelResolvedMessageInput) (*GetDuelResolvedMessageOutput, error)

	// GetPollOpenedMessage returns the question posted when a duel goes to a vote
	GetPollOpenedMessage(ctx context.Context, input *GetPollOpenedMessageInput) (*GetPollOpenedMessageOutput, error)

	// GetVoteCastMessage returns the notice posted after a member votes
	GetVoteCastMessage(ctx context.Context, input *GetVoteCastMessageInput) (*GetVoteCastMessageOutput, error)

	// GetErrorMessage returns a user-friendly error message
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
