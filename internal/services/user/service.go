package user

import (
	"context"
	"errors"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	userRepo "github.com/KirkDiggler/ronda/internal/repositories/user"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	userRepo userRepo.Repository
	clock    clock.Clock
}

// New creates a new user service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.UserRepo == nil {
		return nil, ErrNilUserRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	return &service{
		userRepo: cfg.UserRepo,
		clock:    cfg.Clock,
	}, nil
}

// UpsertProfile merges the input into the stored profile. A profile is
// complete once it has both a username and an age.
func (s *service) UpsertProfile(ctx context.Context, input *UpsertProfileInput) (*UpsertProfileOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		if !errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, err
		}
		user = &models.User{
			ID:        input.UserID,
			CreatedAt: now,
		}
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Age != 0 {
		user.Age = input.Age
	}
	if input.PhotoURL != "" {
		user.PhotoURL = input.PhotoURL
	}
	if input.AcceptedPolicy {
		user.HasAcceptedPolicy = true
	}
	user.HasCompletedProfile = user.Username != "" && user.Age != 0
	user.UpdatedAt = now

	if err := s.userRepo.SaveUser(ctx, &userRepo.SaveUserInput{User: user}); err != nil {
		return nil, err
	}

	log.Debug().
		Str("user_id", user.ID).
		Bool("complete", user.HasCompletedProfile).
		Msg("profile saved")

	return &UpsertProfileOutput{User: user}, nil
}

// GetUser retrieves one profile
func (s *service) GetUser(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	return &GetUserOutput{User: user}, nil
}

// GetUsers retrieves the known profiles among the IDs and names every ID
func (s *service) GetUsers(ctx context.Context, input *GetUsersInput) (*GetUsersOutput, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	found, err := s.userRepo.GetUsers(ctx, &userRepo.GetUsersInput{UserIDs: input.UserIDs})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(input.UserIDs))
	for _, id := range input.UserIDs {
		names[id] = id
	}
	for _, user := range found.Users {
		names[user.ID] = user.DisplayName()
	}

	return &GetUsersOutput{
		Users: found.Users,
		Names: names,
	}, nil
}

// DisplayNames resolves IDs through svc. Lookup failures and a nil svc fall
// back to the IDs themselves, so callers can use it on best-effort paths.
func DisplayNames(ctx context.Context, svc Service, ids ...string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = id
	}

	if svc == nil || len(ids) == 0 {
		return names
	}

	output, err := svc.GetUsers(ctx, &GetUsersInput{UserIDs: ids})
	if err != nil {
		log.Warn().Err(err).Strs("user_ids", ids).Msg("failed to resolve display names")
		return names
	}

	for id, name := range output.Names {
		names[id] = name
	}
	return names
}
