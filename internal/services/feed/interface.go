package feed

import "context"

// Service streams room snapshots to live clients
type Service interface {
	// Subscribe returns a channel carrying the room's current state followed
	// by a fresh snapshot after every committed change
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)

	// GetSnapshot loads the room's current state once
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error)
}
