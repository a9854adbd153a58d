package user

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/ronda/internal/services/user Service

import "context"

// Service manages member profiles and resolves display names
type Service interface {
	// UpsertProfile creates a profile or merges the given fields into it
	UpsertProfile(ctx context.Context, input *UpsertProfileInput) (*UpsertProfileOutput, error)

	// GetUser retrieves one profile
	GetUser(ctx context.Context, input *GetUserInput) (*GetUserOutput, error)

	// GetUsers retrieves several profiles and a display name for every ID,
	// falling back to the ID when no profile exists
	GetUsers(ctx context.Context, input *GetUsersInput) (*GetUsersOutput, error)
}
