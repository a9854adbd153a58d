package checkin

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/ronda/internal/repositories/checkin Repository

import (
	"context"

	"github.com/KirkDiggler/ronda/internal/models"
)

// Repository defines read access to check-ins. Check-ins are written through
// the ledger transaction together with the room's drink tally.
type Repository interface {
	// GetCheckIn retrieves a check-in by ID
	GetCheckIn(ctx context.Context, input *GetCheckInInput) (*models.CheckIn, error)

	// ListCheckIns retrieves a room's live check-ins, newest first
	ListCheckIns(ctx context.Context, input *ListCheckInsInput) (*ListCheckInsOutput, error)
}
