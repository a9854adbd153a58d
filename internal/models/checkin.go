package models

import "time"

// CheckInLifetime is how long a check-in stays visible
const CheckInLifetime = 7 * 24 * time.Hour

// GeoPoint is a latitude/longitude pair
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// CheckIn records a drink at a place and time
type CheckIn struct {
	// ID is the unique identifier for the check-in
	ID string `json:"id"`

	// RoomID is the room the check-in was posted to
	RoomID string `json:"roomId"`

	// UserID is the member who checked in
	UserID string `json:"userId"`

	// DrinkID is the catalog drink that was had
	DrinkID string `json:"drinkId"`

	// Caption is optional text
	Caption string `json:"caption,omitempty"`

	// PhotoURL points to an uploaded picture, if any
	PhotoURL string `json:"photoUrl,omitempty"`

	// Location is where the check-in happened, if shared
	Location *GeoPoint `json:"location,omitempty"`

	// Timestamp is when the check-in was posted
	Timestamp time.Time `json:"timestamp"`

	// ExpiresAt is when the check-in is removed
	ExpiresAt time.Time `json:"expiresAt"`
}
