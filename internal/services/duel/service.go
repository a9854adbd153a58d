package duel

import (
	"context"
	"errors"
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/KirkDiggler/ronda/internal/services/user"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	ledgerRepo       ledger.Repository
	chatService      chat.Service
	messagingService messaging.Service
	userService      user.Service
	clock            clock.Clock
	uuidGenerator    uuid.UUID
	metrics          *metrics.Metrics
}

// New creates a new duel service
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
		userService:      cfg.UserService,
		clock:            cfg.Clock,
		uuidGenerator:    cfg.UUIDGenerator,
		metrics:          cfg.Metrics,
	}, nil
}

// CreateDuel deducts the challenger's wager and writes the duel awaiting the
// opponent's answer
func (s *service) CreateDuel(ctx context.Context, input *CreateDuelInput) (out *CreateDuelOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("create_duel", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.ChallengerID == input.OpponentID {
		return nil, ErrSelfDuel
	}

	duelID := s.uuidGenerator.NewUUID()
	now := s.clock.Now()

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if !room.IsMember(input.ChallengerID) || !room.IsMember(input.OpponentID) {
				return ErrNotRoomMember
			}

			if err := room.Deduct(input.ChallengerID, input.Wager); err != nil {
				return err
			}

			duel := &models.Duel{
				ID:           duelID,
				RoomID:       input.RoomID,
				Title:        input.Title,
				Description:  input.Description,
				ChallengerID: input.ChallengerID,
				OpponentID:   input.OpponentID,
				Wager:        input.Wager,
				StartTime:    now,
				EndTime:      now.Add(input.Duration),
				Status:       models.DuelStatusAwaitingAcceptance,
			}

			room.UpdatedAt = now
			tx.SaveRoom(room)
			tx.SaveDuel(duel)

			out = &CreateDuelOutput{
				Duel:    duel,
				Balance: room.Balance(input.ChallengerID),
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddDebited(input.Wager)
	log.Info().
		Str("room_id", input.RoomID).
		Str("duel_id", duelID).
		Str("challenger_id", input.ChallengerID).
		Str("opponent_id", input.OpponentID).
		Int("wager", input.Wager).
		Msg("duel created")

	return out, nil
}

// AcceptDuel deducts the opponent's wager and restarts the duel's clock with
// its original duration
func (s *service) AcceptDuel(ctx context.Context, input *AcceptDuelInput) (out *AcceptDuelOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("accept_duel", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			duel, err := tx.GetDuel(ctx, input.RoomID, input.DuelID)
			if err != nil {
				return err
			}

			if duel.OpponentID != input.UserID {
				return ErrNotDuelOpponent
			}

			if duel.Status != models.DuelStatusAwaitingAcceptance {
				return ErrInvalidDuelState
			}

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if err := room.Deduct(input.UserID, duel.Wager); err != nil {
				return err
			}

			now := s.clock.Now()
			duration := duel.EndTime.Sub(duel.StartTime)
			duel.StartTime = now
			duel.EndTime = now.Add(duration)
			duel.Status = models.DuelStatusInProgress

			room.UpdatedAt = now
			tx.SaveRoom(room)
			tx.SaveDuel(duel)

			out = &AcceptDuelOutput{
				Duel:    duel,
				Balance: room.Balance(input.UserID),
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddDebited(out.Duel.Wager)

	return out, nil
}

// DeclineDuel refunds the challenger and deletes the duel
func (s *service) DeclineDuel(ctx context.Context, input *DeclineDuelInput) (out *DeclineDuelOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("decline_duel", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			duel, err := tx.GetDuel(ctx, input.RoomID, input.DuelID)
			if err != nil {
				return err
			}

			if duel.OpponentID != input.UserID {
				return ErrNotDuelOpponent
			}

			if duel.Status != models.DuelStatusAwaitingAcceptance {
				return ErrInvalidDuelState
			}

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			room.Credit(duel.ChallengerID, duel.Wager)
			room.UpdatedAt = s.clock.Now()
			tx.SaveRoom(room)
			tx.DeleteDuel(duel.RoomID, duel.ID)

			out = &DeclineDuelOutput{Duel: duel}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddCredited(out.Duel.Wager)

	return out, nil
}

// ResolveDuel pays out an in-progress or polled duel. An empty winner is a
// draw. Any open poll is removed in the same transaction.
func (s *service) ResolveDuel(ctx context.Context, input *ResolveDuelInput) (out *ResolveDuelOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("resolve_duel", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
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

			duel, err := tx.GetDuel(ctx, input.RoomID, input.DuelID)
			if err != nil {
				return err
			}

			switch duel.Status {
			case models.DuelStatusInProgress, models.DuelStatusInPoll:
			case models.DuelStatusResolved:
				return ErrDuelAlreadyResolved
			default:
				return ErrInvalidDuelState
			}

			if input.WinnerID != "" && input.WinnerID != models.DrawWinnerID && !duel.IsParticipant(input.WinnerID) {
				return ErrInvalidWinner
			}

			s.settle(tx, room, duel, input.WinnerID)

			out = &ResolveDuelOutput{Duel: duel}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddCredited(out.Duel.Wager * 2)
	log.Info().
		Str("room_id", input.RoomID).
		Str("duel_id", input.DuelID).
		Str("winner_id", out.Duel.WinnerID).
		Msg("duel resolved")

	s.announceResolution(ctx, out.Duel, false)

	return out, nil
}

// settle pays out the duel on room and queues the room, the resolved duel and
// the removal of its poll
func (s *service) settle(tx ledger.Transaction, room *models.Room, duel *models.Duel, winnerID string) {
	now := s.clock.Now()
	resolvedAt := now.Add(models.ResolvedRetention)

	duel.WinnerID = duel.Settle(room, winnerID)
	duel.Status = models.DuelStatusResolved
	duel.ResolvedAt = &resolvedAt
	if duel.PollID != "" {
		tx.DeletePoll(duel.RoomID, duel.PollID)
		duel.PollID = ""
	}

	room.UpdatedAt = now
	tx.SaveRoom(room)
	tx.SaveDuel(duel)
}

// InitiateDuelPoll opens a room vote on an in-progress duel. The poll, its chat
// message and the duel's new state are committed together.
func (s *service) InitiateDuelPoll(ctx context.Context, input *InitiateDuelPollInput) (out *InitiateDuelPollOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("initiate_duel_poll", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	pollID := s.uuidGenerator.NewUUID()
	messageID := s.uuidGenerator.NewUUID()

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if input.RequestedBy != models.SystemUserID && !room.IsOwner(input.RequestedBy) {
				return ErrNotRoomAdmin
			}

			duel, err := tx.GetDuel(ctx, input.RoomID, input.DuelID)
			if err != nil {
				return err
			}

			if duel.Status != models.DuelStatusInProgress {
				return ErrInvalidDuelState
			}

			names := user.DisplayNames(ctx, s.userService, duel.ChallengerID, duel.OpponentID)
			opened, err := s.messagingService.GetPollOpenedMessage(ctx, &messaging.GetPollOpenedMessageInput{
				ChallengerName: names[duel.ChallengerID],
				OpponentName:   names[duel.OpponentID],
			})
			if err != nil {
				return err
			}

			now := s.clock.Now()
			poll := &models.Poll{
				ID:                    pollID,
				RoomID:                input.RoomID,
				DuelID:                duel.ID,
				Question:              opened.Question,
				Options:               []string{duel.ChallengerID, duel.OpponentID, models.DrawWinnerID},
				Votes:                 make(map[string][]string),
				MemberCountAtCreation: len(room.MemberIDs),
				CreatedAt:             now,
				ExpiresAt:             now.Add(models.ResolvedRetention),
			}

			duel.Status = models.DuelStatusInPoll
			duel.PollID = pollID

			tx.SavePoll(poll)
			tx.AddMessage(&models.Message{
				ID:        messageID,
				RoomID:    input.RoomID,
				AuthorID:  models.SystemUserID,
				Kind:      models.MessageKindPoll,
				Text:      opened.Message,
				PollID:    pollID,
				Timestamp: now,
			})
			tx.SaveDuel(duel)

			out = &InitiateDuelPollOutput{
				Duel: duel,
				Poll: poll,
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("room_id", input.RoomID).
		Str("duel_id", input.DuelID).
		Str("poll_id", pollID).
		Str("requested_by", input.RequestedBy).
		Int("threshold", out.Poll.MajorityThreshold()).
		Msg("duel poll opened")

	return out, nil
}

// CastVote records a vote. A repeated vote from the same user is ignored.
// The vote that reaches the majority settles the duel exactly as ResolveDuel
// would and removes the poll.
func (s *service) CastVote(ctx context.Context, input *CastVoteInput) (out *CastVoteOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("cast_vote", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			poll, err := tx.GetPoll(ctx, input.RoomID, input.PollID)
			if err != nil {
				return err
			}

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if !room.IsMember(input.UserID) {
				return ErrNotRoomMember
			}

			if !poll.HasOption(input.Option) {
				return ErrInvalidOption
			}

			duel, err := tx.GetDuel(ctx, input.RoomID, poll.DuelID)
			if err != nil {
				return err
			}

			if duel.Status != models.DuelStatusInPoll || duel.PollID != poll.ID {
				return ErrPollClosed
			}

			out = &CastVoteOutput{
				Poll: poll,
				Duel: duel,
			}

			if !poll.AddVote(input.Option, input.UserID) {
				return nil
			}
			out.Accepted = true

			if !poll.ReachedMajority(input.Option) {
				tx.SavePoll(poll)
				return nil
			}

			s.settle(tx, room, duel, input.Option)
			out.Resolved = true
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if !out.Accepted {
		return out, nil
	}

	s.announceVote(ctx, input)

	if out.Resolved {
		s.metrics.AddCredited(out.Duel.Wager * 2)
		log.Info().
			Str("room_id", input.RoomID).
			Str("duel_id", out.Duel.ID).
			Str("winner_id", out.Duel.WinnerID).
			Int("votes", len(out.Poll.Votes[input.Option])).
			Msg("duel resolved by vote")

		s.announceResolution(ctx, out.Duel, true)
	}

	return out, nil
}

func (s *service) announceVote(ctx context.Context, input *CastVoteInput) {
	names := user.DisplayNames(ctx, s.userService, input.UserID, input.Option)
	msg, err := s.messagingService.GetVoteCastMessage(ctx, &messaging.GetVoteCastMessageInput{
		VoterName:  names[input.UserID],
		OptionName: names[input.Option],
	})
	if err != nil {
		log.Warn().Err(err).Str("poll_id", input.PollID).Msg("failed to build vote notice")
		return
	}

	_, err = s.chatService.PostSystemMessage(ctx, &chat.PostSystemMessageInput{
		RoomID: input.RoomID,
		Text:   msg.Message,
	})
	if err != nil {
		log.Warn().Err(err).Str("poll_id", input.PollID).Msg("failed to post vote notice")
	}
}

// announceResolution posts the outcome to room chat. Failures are logged only.
func (s *service) announceResolution(ctx context.Context, duel *models.Duel, byVote bool) {
	names := user.DisplayNames(ctx, s.userService, duel.WinnerID)
	msg, err := s.messagingService.GetDuelResolvedMessage(ctx, &messaging.GetDuelResolvedMessageInput{
		Title:      duel.Title,
		WinnerName: names[duel.WinnerID],
		IsDraw:     duel.WinnerID == models.DrawWinnerID,
		Pot:        duel.Wager * 2,
		ByVote:     byVote,
	})
	if err != nil {
		log.Warn().Err(err).Str("duel_id", duel.ID).Msg("failed to build duel announcement")
		return
	}

	_, err = s.chatService.PostSystemMessage(ctx, &chat.PostSystemMessageInput{
		RoomID: duel.RoomID,
		Text:   msg.Message,
	})
	if err != nil {
		log.Warn().Err(err).Str("duel_id", duel.ID).Msg("failed to announce duel resolution")
	}
}

// EscalateExpiredDuels opens a poll as the system user for every overdue
// in-progress duel the room admin is fighting in. Other overdue duels wait
// for the admin. A duel that changed state in the meantime is skipped.
func (s *service) EscalateExpiredDuels(ctx context.Context, input *EscalateExpiredDuelsInput) (*EscalateExpiredDuelsOutput, error) {
	if input == nil {
		input = &EscalateExpiredDuelsInput{}
	}

	expired, err := s.ledgerRepo.ListExpiredDuels(ctx, &ledger.ListExpiredDuelsInput{
		Before: s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string)
	output := &EscalateExpiredDuelsOutput{}
	for _, duel := range expired.Duels {
		if input.RoomID != "" && duel.RoomID != input.RoomID {
			continue
		}

		ownerID, ok := owners[duel.RoomID]
		if !ok {
			room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: duel.RoomID})
			if err != nil {
				if ctx.Err() != nil {
					return output, ctx.Err()
				}
				log.Warn().Err(err).Str("room_id", duel.RoomID).Msg("failed to load room for overdue duel")
				continue
			}
			ownerID = room.OwnerID
			owners[duel.RoomID] = ownerID
		}

		if !duel.IsParticipant(ownerID) {
			output.Skipped++
			continue
		}

		polled, err := s.InitiateDuelPoll(ctx, &InitiateDuelPollInput{
			RoomID:      duel.RoomID,
			DuelID:      duel.ID,
			RequestedBy: models.SystemUserID,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidDuelState) || errors.Is(err, ledger.ErrDuelNotFound) {
				log.Debug().Str("duel_id", duel.ID).Msg("duel no longer needs a poll")
				continue
			}
			if ctx.Err() != nil {
				return output, ctx.Err()
			}
			log.Warn().Err(err).Str("room_id", duel.RoomID).Str("duel_id", duel.ID).Msg("failed to escalate duel")
			continue
		}

		output.Polls = append(output.Polls, polled.Poll)
	}

	return output, nil
}

// GetDuel retrieves a duel
func (s *service) GetDuel(ctx context.Context, input *GetDuelInput) (*GetDuelOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	duel, err := s.ledgerRepo.GetDuel(ctx, &ledger.GetDuelInput{RoomID: input.RoomID, DuelID: input.DuelID})
	if err != nil {
		return nil, err
	}

	return &GetDuelOutput{Duel: duel}, nil
}

// ListDuels retrieves a room's duels, oldest first
func (s *service) ListDuels(ctx context.Context, input *ListDuelsInput) (*ListDuelsOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	output, err := s.ledgerRepo.ListDuels(ctx, &ledger.ListDuelsInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	return &ListDuelsOutput{Duels: output.Duels}, nil
}

// ListPolls retrieves a room's open polls, oldest first
func (s *service) ListPolls(ctx context.Context, input *ListPollsInput) (*ListPollsOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	output, err := s.ledgerRepo.ListPolls(ctx, &ledger.ListPollsInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	return &ListPollsOutput{Polls: output.Polls}, nil
}
