package bet

import (
	"context"
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	ledgerRepo       ledger.Repository
	chatService      chat.Service
	messagingService messaging.Service
	clock            clock.Clock
	uuidGenerator    uuid.UUID
	metrics          *metrics.Metrics
}

// New creates a new bet service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.LedgerRepo == nil {
		return nil, ErrNilLedgerRepo
	}

	if cfg.ChatService == nil {
		return nil, ErrNilChatService
	}

	if cfg.MessagingService == nil {
		return nil, ErrNilMessagingService
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		ledgerRepo:       cfg.LedgerRepo,
		chatService:      cfg.ChatService,
		messagingService: cfg.MessagingService,
		clock:            cfg.Clock,
		uuidGenerator:    cfg.UUIDGenerator,
		metrics:          cfg.Metrics,
	}, nil
}

// CreateBet opens a bet. The proposer's stake is deducted and the bet written
// in the same transaction; an insufficient balance leaves nothing behind.
func (s *service) CreateBet(ctx context.Context, input *CreateBetInput) (out *CreateBetOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("create_bet", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !input.Deadline.After(now) {
		return nil, ErrDeadlinePassed
	}

	betID := s.uuidGenerator.NewUUID()

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if !room.IsMember(input.ProposerUserID) || !room.IsMember(input.TargetUserID) {
				return ErrNotRoomMember
			}

			if err := room.Deduct(input.ProposerUserID, input.Stake); err != nil {
				return err
			}

			bet := &models.Bet{
				ID:             betID,
				RoomID:         input.RoomID,
				Title:          input.Title,
				TargetUserID:   input.TargetUserID,
				ProposerUserID: input.ProposerUserID,
				Odds:           input.Odds,
				Deadline:       input.Deadline,
				Status:         models.BetStatusPending,
				Wagers:         map[string]int{input.ProposerUserID: input.Stake},
				CreatedAt:      now,
			}

			room.UpdatedAt = now
			tx.SaveRoom(room)
			tx.SaveBet(bet)

			out = &CreateBetOutput{
				Bet:     bet,
				Balance: room.Balance(input.ProposerUserID),
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddDebited(input.Stake)
	log.Info().
		Str("room_id", input.RoomID).
		Str("bet_id", betID).
		Str("proposer_id", input.ProposerUserID).
		Int("stake", input.Stake).
		Msg("bet created")

	return out, nil
}

// PlaceWager records a stake on a pending bet. A repeated wager replaces the
// recorded amount; the earlier deduction is not refunded.
func (s *service) PlaceWager(ctx context.Context, input *PlaceWagerInput) (out *PlaceWagerOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("place_wager", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			bet, err := tx.GetBet(ctx, input.RoomID, input.BetID)
			if err != nil {
				return err
			}

			if bet.Status != models.BetStatusPending {
				return ErrBetNotPending
			}

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if !room.IsMember(input.UserID) {
				return ErrNotRoomMember
			}

			if err := room.Deduct(input.UserID, input.Amount); err != nil {
				return err
			}

			if bet.Wagers == nil {
				bet.Wagers = make(map[string]int)
			}
			bet.Wagers[input.UserID] = input.Amount

			room.UpdatedAt = s.clock.Now()
			tx.SaveRoom(room)
			tx.SaveBet(bet)

			out = &PlaceWagerOutput{
				Bet:     bet,
				Balance: room.Balance(input.UserID),
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddDebited(input.Amount)

	return out, nil
}

// ResolveBet settles a pending bet. Won pays each staker floor(wager × odds),
// cancelled refunds every wager and lost leaves the stakes with the house.
func (s *service) ResolveBet(ctx context.Context, input *ResolveBetInput) (out *ResolveBetOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("resolve_bet", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if !input.Status.IsValidResolution() {
		return nil, ErrInvalidResolution
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if !room.IsOwner(input.ResolvedBy) {
				return ErrNotRoomAdmin
			}

			bet, err := tx.GetBet(ctx, input.RoomID, input.BetID)
			if err != nil {
				return err
			}

			if bet.Status != models.BetStatusPending {
				return ErrBetNotPending
			}

			payouts := make(map[string]int, len(bet.Wagers))
			total := 0
			for userID, wager := range bet.Wagers {
				var amount int
				switch input.Status {
				case models.BetStatusWon:
					amount = bet.Payout(wager)
				case models.BetStatusCancelled:
					amount = wager
				}
				if amount <= 0 {
					continue
				}
				room.Credit(userID, amount)
				payouts[userID] = amount
				total += amount
			}

			now := s.clock.Now()
			resolvedAt := now.Add(models.ResolvedRetention)
			bet.Status = input.Status
			bet.ResolvedAt = &resolvedAt

			room.UpdatedAt = now
			tx.SaveRoom(room)
			tx.SaveBet(bet)

			out = &ResolveBetOutput{
				Bet:       bet,
				Payouts:   payouts,
				TotalPaid: total,
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddCredited(out.TotalPaid)
	log.Info().
		Str("room_id", input.RoomID).
		Str("bet_id", input.BetID).
		Str("status", string(input.Status)).
		Int("total_paid", out.TotalPaid).
		Msg("bet resolved")

	s.announceResolution(ctx, out)

	return out, nil
}

// announceResolution posts the outcome to room chat. Failures are logged only;
// the ledger has already committed.
func (s *service) announceResolution(ctx context.Context, out *ResolveBetOutput) {
	msg, err := s.messagingService.GetBetResolvedMessage(ctx, &messaging.GetBetResolvedMessageInput{
		Title:       out.Bet.Title,
		Status:      out.Bet.Status,
		StakerCount: len(out.Bet.Wagers),
		TotalPaid:   out.TotalPaid,
	})
	if err != nil {
		log.Warn().Err(err).Str("bet_id", out.Bet.ID).Msg("failed to build bet announcement")
		return
	}

	_, err = s.chatService.PostSystemMessage(ctx, &chat.PostSystemMessageInput{
		RoomID: out.Bet.RoomID,
		Text:   msg.Message,
	})
	if err != nil {
		log.Warn().Err(err).Str("bet_id", out.Bet.ID).Msg("failed to announce bet resolution")
	}
}

// GetBet retrieves a bet
func (s *service) GetBet(ctx context.Context, input *GetBetInput) (*GetBetOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	bet, err := s.ledgerRepo.GetBet(ctx, &ledger.GetBetInput{RoomID: input.RoomID, BetID: input.BetID})
	if err != nil {
		return nil, err
	}

	return &GetBetOutput{Bet: bet}, nil
}

// ListBets retrieves a room's bets, oldest first
func (s *service) ListBets(ctx context.Context, input *ListBetsInput) (*ListBetsOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	output, err := s.ledgerRepo.ListBets(ctx, &ledger.ListBetsInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	return &ListBetsOutput{Bets: output.Bets}, nil
}
