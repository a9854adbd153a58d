package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	ledgerRepo ledger.Repository
	clock      clock.Clock
	metrics    *metrics.Metrics
}

// New creates a new feed service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.LedgerRepo == nil {
		return nil, ErrNilLedgerRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	return &service{
		ledgerRepo: cfg.LedgerRepo,
		clock:      cfg.Clock,
		metrics:    cfg.Metrics,
	}, nil
}

// Subscribe listens for the room's change notices before loading the first
// snapshot, so no commit between the two is lost.
func (s *service) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)

	sub, err := s.ledgerRepo.Subscribe(subCtx, &ledger.SubscribeInput{RoomID: input.RoomID})
	if err != nil {
		cancel()
		return nil, err
	}

	initial, err := s.load(subCtx, input.RoomID, nil)
	if err != nil {
		cancel()
		return nil, err
	}

	snapshots := make(chan *models.RoomSnapshot, 1)
	snapshots <- initial

	s.metrics.SubscriberOpened()

	go func() {
		defer func() {
			cancel()
			close(snapshots)
			s.metrics.SubscriberClosed()
		}()

		for {
			select {
			case <-subCtx.Done():
				return
			case notice, ok := <-sub.Notices:
				if !ok {
					return
				}

				snapshot, err := s.load(subCtx, input.RoomID, notice.Kinds)
				if err != nil {
					if errors.Is(err, ledger.ErrRoomNotFound) {
						log.Info().Str("room_id", input.RoomID).Msg("room gone, closing feed")
						return
					}
					if subCtx.Err() != nil {
						return
					}
					log.Warn().Err(err).Str("room_id", input.RoomID).Msg("failed to load snapshot")
					continue
				}

				offerLatest(snapshots, snapshot)
			}
		}
	}()

	return &SubscribeOutput{Snapshots: snapshots}, nil
}

// offerLatest puts snapshot on ch, replacing an unread one. ch must have a
// buffer of one and a single sender.
func offerLatest(ch chan *models.RoomSnapshot, snapshot *models.RoomSnapshot) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}

		select {
		case <-ch:
		default:
		}
	}
}

// GetSnapshot loads the room's current state once
func (s *service) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	snapshot, err := s.load(ctx, input.RoomID, nil)
	if err != nil {
		return nil, err
	}

	return &GetSnapshotOutput{Snapshot: snapshot}, nil
}

func (s *service) load(ctx context.Context, roomID string, kinds []models.ChangeKind) (*models.RoomSnapshot, error) {
	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: roomID})
	if err != nil {
		return nil, err
	}

	bets, err := s.ledgerRepo.ListBets(ctx, &ledger.ListBetsInput{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}

	duels, err := s.ledgerRepo.ListDuels(ctx, &ledger.ListDuelsInput{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to load duels: %w", err)
	}

	polls, err := s.ledgerRepo.ListPolls(ctx, &ledger.ListPollsInput{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to load polls: %w", err)
	}

	return &models.RoomSnapshot{
		Room:      room,
		Bets:      bets.Bets,
		Duels:     duels.Duels,
		Polls:     polls.Polls,
		Kinds:     kinds,
		Timestamp: s.clock.Now(),
	}, nil
}
