package user

import (
	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/models"
	userRepo "github.com/KirkDiggler/ronda/internal/repositories/user"
)

// Config holds the dependencies of the user service
type Config struct {
	// UserRepo stores profiles
	UserRepo userRepo.Repository

	// Clock provides the current time
	Clock clock.Clock
}

// UpsertProfileInput contains the profile fields to set. Empty fields keep
// their stored value.
type UpsertProfileInput struct {
	UserID   string `validate:"required"`
	Username string `validate:"omitempty,min=2,max=32"`
	Age      int    `validate:"omitempty,gte=18,lte=120"`
	PhotoURL string `validate:"omitempty,url"`

	// AcceptedPolicy records the user's consent; it cannot be withdrawn here
	AcceptedPolicy bool
}

// UpsertProfileOutput contains the stored profile
type UpsertProfileOutput struct {
	User *models.User
}

// GetUserInput identifies a profile
type GetUserInput struct {
	UserID string `validate:"required"`
}

// GetUserOutput contains the profile
type GetUserOutput struct {
	User *models.User
}

// GetUsersInput lists the users to look up
type GetUsersInput struct {
	UserIDs []string `validate:"dive,required"`
}

// GetUsersOutput contains the profiles that exist and a name for every
// requested ID
type GetUsersOutput struct {
	Users []*models.User

	// Names maps each requested ID to its username, or to itself
	Names map[string]string
}
