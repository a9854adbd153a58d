package user

import "github.com/KirkDiggler/ronda/internal/models"

// SaveUserInput contains the profile to store
type SaveUserInput struct {
	User *models.User
}

// GetUserInput identifies a profile
type GetUserInput struct {
	UserID string
}

// GetUsersInput lists the profiles to fetch
type GetUsersInput struct {
	UserIDs []string
}

// GetUsersOutput contains the profiles found, in request order. Missing IDs
// are left out.
type GetUsersOutput struct {
	Users []*models.User
}
