package feed

import (
	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
)

// FeedError is a custom error type for feed errors
type FeedError string

// Error implements the error interface
func (e FeedError) Error() string {
	return string(e)
}

const (
	ErrNilConfig     FeedError = "config cannot be nil"
	ErrNilLedgerRepo FeedError = "ledger repository cannot be nil"
	ErrNilClock      FeedError = "clock cannot be nil"
)

// Config holds the dependencies of the feed service
type Config struct {
	// LedgerRepo provides the documents and the change notices
	LedgerRepo ledger.Repository

	// Clock stamps snapshots
	Clock clock.Clock

	// Metrics is optional
	Metrics *metrics.Metrics
}

// SubscribeInput contains parameters for subscribing to a room's snapshots
type SubscribeInput struct {
	RoomID string `validate:"required"`
}

// SubscribeOutput carries the snapshots. Snapshots is closed when the
// subscription's context is done. A consumer that falls behind only sees the
// most recent snapshot.
type SubscribeOutput struct {
	Snapshots <-chan *models.RoomSnapshot
}

// GetSnapshotInput contains parameters for loading a room snapshot
type GetSnapshotInput struct {
	RoomID string `validate:"required"`
}

// GetSnapshotOutput contains the result of loading a room snapshot
type GetSnapshotOutput struct {
	Snapshot *models.RoomSnapshot
}
