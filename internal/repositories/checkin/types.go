package checkin

import "github.com/KirkDiggler/ronda/internal/models"

// GetCheckInInput contains parameters for reading a check-in
type GetCheckInInput struct {
	RoomID    string
	CheckInID string
}

// ListCheckInsInput contains parameters for listing a room's live check-ins
type ListCheckInsInput struct {
	RoomID string
}

// ListCheckInsOutput contains the result of listing a room's live check-ins
type ListCheckInsOutput struct {
	CheckIns []*models.CheckIn
}
