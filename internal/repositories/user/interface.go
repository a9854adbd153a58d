package user

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/ronda/internal/repositories/user Repository

import (
	"context"

	"github.com/KirkDiggler/ronda/internal/models"
)

// Repository defines the interface for user profile persistence
type Repository interface {
	// SaveUser creates or replaces a profile
	SaveUser(ctx context.Context, input *SaveUserInput) error

	// GetUser retrieves a profile by ID
	GetUser(ctx context.Context, input *GetUserInput) (*models.User, error)

	// GetUsers retrieves the profiles that exist among the given IDs
	GetUsers(ctx context.Context, input *GetUsersInput) (*GetUsersOutput, error)
}
