package room

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	ledgerRepo    ledger.Repository
	clock         clock.Clock
	uuidGenerator uuid.UUID
	metrics       *metrics.Metrics
}

// New creates a new room service
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

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		ledgerRepo:    cfg.LedgerRepo,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
		metrics:       cfg.Metrics,
	}, nil
}

// CreateRoom creates a room with the owner as its only member
func (s *service) CreateRoom(ctx context.Context, input *CreateRoomInput) (out *CreateRoomOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("create_room", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	drinks := make([]models.Drink, len(DefaultDrinks))
	copy(drinks, DefaultDrinks)

	room := &models.Room{
		ID:          s.uuidGenerator.NewUUID(),
		Title:       input.Title,
		Description: input.Description,
		PhotoURL:    input.PhotoURL,
		OwnerID:     input.OwnerID,
		ChannelID:   input.ChannelID,
		Drinks:      drinks,
		Scores:      make(map[string]map[string]int),
		UserCredits: make(map[string]int),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	room.AddMember(input.OwnerID)

	// Invite codes are short, so retry on the rare collision
	for attempt := 0; attempt < maxInviteAttempts; attempt++ {
		room.InviteCode = s.newInviteCode()

		err := s.ledgerRepo.CreateRoom(ctx, &ledger.CreateRoomInput{Room: room})
		if errors.Is(err, ledger.ErrInviteCodeTaken) {
			log.Debug().Str("invite_code", room.InviteCode).Msg("invite code collision, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info().
			Str("room_id", room.ID).
			Str("owner_id", room.OwnerID).
			Msg("room created")

		return &CreateRoomOutput{Room: room}, nil
	}

	return nil, ErrInviteCodeExhausted
}

func (s *service) newInviteCode() string {
	id := strings.ReplaceAll(s.uuidGenerator.NewUUID(), "-", "")
	if len(id) > inviteCodeLength {
		id = id[:inviteCodeLength]
	}
	return strings.ToUpper(id)
}

// JoinRoom adds a user to a room. First-time members receive the starting
// balance; returning members keep what they left with.
func (s *service) JoinRoom(ctx context.Context, input *JoinRoomInput) (out *JoinRoomOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("join_room", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	roomID := input.RoomID
	if roomID == "" {
		if input.InviteCode == "" {
			return nil, ErrRoomIdentifierNeeded
		}

		room, err := s.ledgerRepo.GetRoomByInviteCode(ctx, &ledger.GetRoomByInviteCodeInput{
			InviteCode: strings.ToUpper(strings.TrimSpace(input.InviteCode)),
		})
		if err != nil {
			return nil, err
		}
		roomID = room.ID
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			room, err := tx.GetRoom(ctx, roomID)
			if err != nil {
				return err
			}

			if !room.AddMember(input.UserID) {
				out = &JoinRoomOutput{Room: room, AlreadyMember: true}
				return nil
			}

			room.UpdatedAt = s.clock.Now()
			tx.SaveRoom(room)
			out = &JoinRoomOutput{Room: room}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if !out.AlreadyMember {
		log.Info().Str("room_id", roomID).Str("user_id", input.UserID).Msg("member joined")
	}

	return out, nil
}

// LeaveRoom removes a member. The balance stays on the room.
func (s *service) LeaveRoom(ctx context.Context, input *LeaveRoomInput) (out *LeaveRoomOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("leave_room", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = &LeaveRoomOutput{}

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if room.IsOwner(input.UserID) {
				return ErrOwnerCannotLeave
			}

			if !room.RemoveMember(input.UserID) {
				return nil
			}

			room.UpdatedAt = s.clock.Now()
			tx.SaveRoom(room)
			out.Left = true
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetRoom retrieves a room
func (s *service) GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	return &GetRoomOutput{Room: room}, nil
}

// GetRoomByChannel retrieves the room linked to a Discord channel
func (s *service) GetRoomByChannel(ctx context.Context, input *GetRoomByChannelInput) (*GetRoomOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoomByChannel(ctx, &ledger.GetRoomByChannelInput{ChannelID: input.ChannelID})
	if err != nil {
		return nil, err
	}

	return &GetRoomOutput{Room: room}, nil
}

// ListRooms retrieves the rooms a user belongs to, newest first
func (s *service) ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	output, err := s.ledgerRepo.ListRoomsForUser(ctx, &ledger.ListRoomsForUserInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	rooms := output.Rooms
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})

	return &ListRoomsOutput{Rooms: rooms}, nil
}

// UpdateDrinks replaces the drink catalog. Only the owner may do this.
func (s *service) UpdateDrinks(ctx context.Context, input *UpdateDrinksInput) (out *UpdateDrinksOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("update_drinks", start, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(input.Drinks))
	for _, d := range input.Drinks {
		if seen[d.ID] {
			return nil, ErrDuplicateDrink
		}
		seen[d.ID] = true
	}

	err = s.ledgerRepo.RunTransaction(ctx, &ledger.RunTransactionInput{
		Apply: func(ctx context.Context, tx ledger.Transaction) error {
			out = nil

			room, err := tx.GetRoom(ctx, input.RoomID)
			if err != nil {
				return err
			}

			if !room.IsOwner(input.ActorID) {
				return ErrNotRoomAdmin
			}

			room.Drinks = append([]models.Drink(nil), input.Drinks...)
			room.UpdatedAt = s.clock.Now()
			tx.SaveRoom(room)
			out = &UpdateDrinksOutput{Room: room}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// AddDrink increments a member's tally for a catalog drink
func (s *service) AddDrink(ctx context.Context, input *AddDrinkInput) (out *AddDrinkOutput, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("add_drink", start, err) }()

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

			if !room.IsMember(input.UserID) {
				return ErrNotRoomMember
			}

			if _, ok := room.FindDrink(input.DrinkID); !ok {
				return ErrDrinkNotFound
			}

			room.AddScore(input.UserID, input.DrinkID)
			room.UpdatedAt = s.clock.Now()
			tx.SaveRoom(room)

			out = &AddDrinkOutput{
				Count: room.Scores[input.UserID][input.DrinkID],
				Score: room.Score(input.UserID),
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetLeaderboard ranks the current members by score, highest first. Ties are
// ordered by user ID so the ranking is stable.
func (s *service) GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	entries := make([]*models.LeaderboardEntry, 0, len(room.MemberIDs))
	for _, userID := range room.MemberIDs {
		counts := make(map[string]int, len(room.Scores[userID]))
		for drinkID, count := range room.Scores[userID] {
			counts[drinkID] = count
		}

		entries = append(entries, &models.LeaderboardEntry{
			UserID:      userID,
			Score:       room.Score(userID),
			Credits:     room.Balance(userID),
			DrinkCounts: counts,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})

	return &GetLeaderboardOutput{Entries: entries}, nil
}

// GetBalance returns a member's spendable credits
func (s *service) GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.ledgerRepo.GetRoom(ctx, &ledger.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	if !room.IsMember(input.UserID) {
		return nil, ErrNotRoomMember
	}

	return &GetBalanceOutput{Balance: room.Balance(input.UserID)}, nil
}
