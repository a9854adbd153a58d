package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	defaultBetMinutes  = 60
	defaultDuelMinutes = 30
)

// RondaCommandConfig holds the services behind the /ronda command
type RondaCommandConfig struct {
	RoomService      room.Service
	BetService       bet.Service
	DuelService      duel.Service
	MessagingService messaging.Service
}

// RondaCommand handles the /ronda command and its buttons. Each Discord
// channel maps to at most one room.
type RondaCommand struct {
	BaseCommand
	roomService      room.Service
	betService       bet.Service
	duelService      duel.Service
	messagingService messaging.Service
}

// NewRondaCommand creates a new ronda command handler
func NewRondaCommand(cfg *RondaCommandConfig) (*RondaCommand, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RoomService == nil || cfg.BetService == nil || cfg.DuelService == nil || cfg.MessagingService == nil {
		return nil, errors.New("all services are required")
	}

	return &RondaCommand{
		BaseCommand: BaseCommand{
			Name:        "ronda",
			Description: "Drinking room bets and duels",
			Options:     rondaOptions(),
		},
		roomService:      cfg.RoomService,
		betService:       cfg.BetService,
		duelService:      cfg.DuelService,
		messagingService: cfg.MessagingService,
	}, nil
}

func rondaOptions() []*discordgo.ApplicationCommandOption {
	minOdds := 1.01
	minOne := 1.0

	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "start",
			Description: "Open a room in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Room name", Required: true},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "join",
			Description: "Join this channel's room",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "balance",
			Description: "Show your credits",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "leaderboard",
			Description: "Show the room standings",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "bet",
			Description: "Propose a bet on a member",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "What happens", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "target", Description: "Who it is about", Required: true},
				{Type: discordgo.ApplicationCommandOptionNumber, Name: "odds", Description: "Payout multiplier", Required: true, MinValue: &minOdds},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "stake", Description: "Your stake", Required: true, MinValue: &minOne},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "Minutes until the deadline", MinValue: &minOne},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "wager",
			Description: "Stake credits on a pending bet",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "bet", Description: "Bet ID", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Credits", Required: true, MinValue: &minOne},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "resolve-bet",
			Description: "Settle a bet (room admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "bet", Description: "Bet ID", Required: true},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "outcome",
					Description: "How it ended",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Won", Value: string(models.BetStatusWon)},
						{Name: "Lost", Value: string(models.BetStatusLost)},
						{Name: "Cancelled", Value: string(models.BetStatusCancelled)},
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "duel",
			Description: "Challenge a member",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "opponent", Description: "Who you challenge", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "The challenge", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "wager", Description: "Stake per side", Required: true, MinValue: &minOne},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "Duel length", MinValue: &minOne},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "resolve-duel",
			Description: "Declare a duel winner (room admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "duel", Description: "Duel ID", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "winner", Description: "Leave empty for a draw"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "poll",
			Description: "Let the room vote on a duel (room admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "duel", Description: "Duel ID", Required: true},
			},
		},
	}
}

// Handle processes a Discord interaction for the ronda command
func (c *RondaCommand) Handle(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	sub := data.Options[0]
	opts := optionMap(sub.Options)
	userID := interactionUserID(i)

	// start is the only subcommand that runs before the channel has a room
	if sub.Name == "start" {
		return c.handleStart(ctx, s, i, userID, opts)
	}

	rm, err := c.channelRoom(ctx, i.ChannelID)
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	switch sub.Name {
	case "join":
		err = c.handleJoin(ctx, s, i, rm, userID)
	case "balance":
		err = c.handleBalance(ctx, s, i, rm, userID)
	case "leaderboard":
		err = c.handleLeaderboard(ctx, s, i, rm)
	case "bet":
		err = c.handleBet(ctx, s, i, rm, userID, opts)
	case "wager":
		err = c.handleWager(ctx, s, i, rm, userID, opts)
	case "resolve-bet":
		err = c.handleResolveBet(ctx, s, i, rm, userID, opts)
	case "duel":
		err = c.handleDuel(ctx, s, i, rm, userID, opts)
	case "resolve-duel":
		err = c.handleResolveDuel(ctx, s, i, rm, userID, opts)
	case "poll":
		err = c.handlePoll(ctx, s, i, rm, userID, opts)
	default:
		err = fmt.Errorf("unknown subcommand %q", sub.Name)
	}

	return err
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, fallback int) int {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue())
	}
	return fallback
}

// stringOption reads string, user and mentionable options, which all carry
// their value as a string
func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		value, _ := opt.Value.(string)
		return value
	}
	return ""
}

func (c *RondaCommand) channelRoom(ctx context.Context, channelID string) (*models.Room, error) {
	output, err := c.roomService.GetRoomByChannel(ctx, &room.GetRoomByChannelInput{ChannelID: channelID})
	if err != nil {
		return nil, err
	}
	return output.Room, nil
}

func (c *RondaCommand) handleStart(ctx context.Context, s Session, i *discordgo.InteractionCreate, userID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	existing, err := c.channelRoom(ctx, i.ChannelID)
	if err == nil {
		return RespondWithError(s, i, "Room Exists", fmt.Sprintf("This channel already hosts **%s**. Use `/ronda join`.", existing.Title))
	}
	if !errors.Is(err, ledger.ErrRoomNotFound) {
		return c.respondWithError(ctx, s, i, err)
	}

	output, err := c.roomService.CreateRoom(ctx, &room.CreateRoomInput{
		Title:     stringOption(opts, "title"),
		OwnerID:   userID,
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEmbed(s, i, renderRoom(output.Room))
}

func (c *RondaCommand) handleJoin(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string) error {
	output, err := c.roomService.JoinRoom(ctx, &room.JoinRoomInput{RoomID: rm.ID, UserID: userID})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	if output.AlreadyMember {
		return RespondWithEphemeralMessage(s, i, "You're already in this room.")
	}

	return RespondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "New Member",
		Description: fmt.Sprintf("%s joined **%s** with %d credits.", mention(userID), rm.Title, output.Room.UserCredits[userID]),
		Color:       colorInfo,
	})
}

func (c *RondaCommand) handleBalance(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string) error {
	output, err := c.roomService.GetBalance(ctx, &room.GetBalanceInput{RoomID: rm.ID, UserID: userID})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("You have %d credits.", output.Balance))
}

func (c *RondaCommand) handleLeaderboard(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room) error {
	output, err := c.roomService.GetLeaderboard(ctx, &room.GetLeaderboardInput{RoomID: rm.ID})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEmbed(s, i, renderLeaderboard(rm.Title, output.Entries))
}

func (c *RondaCommand) handleBet(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	odds := 0.0
	if opt, ok := opts["odds"]; ok {
		odds = opt.FloatValue()
	}
	minutes := intOption(opts, "minutes", defaultBetMinutes)

	output, err := c.betService.CreateBet(ctx, &bet.CreateBetInput{
		RoomID:         rm.ID,
		Title:          stringOption(opts, "title"),
		TargetUserID:   stringOption(opts, "target"),
		ProposerUserID: userID,
		Odds:           odds,
		Deadline:       time.Now().Add(time.Duration(minutes) * time.Minute),
		Stake:          intOption(opts, "stake", 0),
	})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEmbed(s, i, renderBet(output.Bet))
}

func (c *RondaCommand) handleWager(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	output, err := c.betService.PlaceWager(ctx, &bet.PlaceWagerInput{
		RoomID: rm.ID,
		BetID:  stringOption(opts, "bet"),
		UserID: userID,
		Amount: intOption(opts, "amount", 0),
	})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("You're in on **%s** for %d. Balance: %d.",
		output.Bet.Title, output.Bet.Wagers[userID], output.Balance))
}

func (c *RondaCommand) handleResolveBet(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	output, err := c.betService.ResolveBet(ctx, &bet.ResolveBetInput{
		RoomID:     rm.ID,
		BetID:      stringOption(opts, "bet"),
		Status:     models.BetStatus(stringOption(opts, "outcome")),
		ResolvedBy: userID,
	})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEmbed(s, i, renderBet(output.Bet))
}

func (c *RondaCommand) handleDuel(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	output, err := c.duelService.CreateDuel(ctx, &duel.CreateDuelInput{
		RoomID:       rm.ID,
		Title:        stringOption(opts, "title"),
		ChallengerID: userID,
		OpponentID:   stringOption(opts, "opponent"),
		Wager:        intOption(opts, "wager", 0),
		Duration:     time.Duration(intOption(opts, "minutes", defaultDuelMinutes)) * time.Minute,
	})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEmbedAndButtons(s, i, renderDuel(output.Duel), duelButtons(output.Duel))
}

func (c *RondaCommand) handleResolveDuel(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	output, err := c.duelService.ResolveDuel(ctx, &duel.ResolveDuelInput{
		RoomID:     rm.ID,
		DuelID:     stringOption(opts, "duel"),
		WinnerID:   stringOption(opts, "winner"),
		ResolvedBy: userID,
	})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEmbed(s, i, renderDuel(output.Duel))
}

func (c *RondaCommand) handlePoll(ctx context.Context, s Session, i *discordgo.InteractionCreate, rm *models.Room, userID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	output, err := c.duelService.InitiateDuelPoll(ctx, &duel.InitiateDuelPollInput{
		RoomID:      rm.ID,
		DuelID:      stringOption(opts, "duel"),
		RequestedBy: userID,
	})
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}

	return RespondWithEmbedAndButtons(s, i, renderPoll(output.Poll), voteButtons(output.Poll))
}

// HandleComponent processes the duel and poll buttons
func (c *RondaCommand) HandleComponent(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	action, args, ok := parseComponentID(i.MessageComponentData().CustomID)
	if !ok {
		return nil
	}

	rm, err := c.channelRoom(ctx, i.ChannelID)
	if err != nil {
		return c.respondWithError(ctx, s, i, err)
	}
	userID := interactionUserID(i)

	switch {
	case action == actionAcceptDuel && len(args) == 1:
		output, err := c.duelService.AcceptDuel(ctx, &duel.AcceptDuelInput{RoomID: rm.ID, DuelID: args[0], UserID: userID})
		if err != nil {
			return c.respondWithError(ctx, s, i, err)
		}
		return RespondWithUpdate(s, i, renderDuel(output.Duel), nil)

	case action == actionDeclineDuel && len(args) == 1:
		output, err := c.duelService.DeclineDuel(ctx, &duel.DeclineDuelInput{RoomID: rm.ID, DuelID: args[0], UserID: userID})
		if err != nil {
			return c.respondWithError(ctx, s, i, err)
		}
		return RespondWithUpdate(s, i, &discordgo.MessageEmbed{
			Title:       output.Duel.Title,
			Description: fmt.Sprintf("%s declined. Stake refunded to %s.", mention(userID), mention(output.Duel.ChallengerID)),
			Color:       colorInfo,
		}, nil)

	case action == actionVote && len(args) == 2:
		output, err := c.duelService.CastVote(ctx, &duel.CastVoteInput{RoomID: rm.ID, PollID: args[0], Option: args[1], UserID: userID})
		if err != nil {
			return c.respondWithError(ctx, s, i, err)
		}
		if !output.Accepted {
			return RespondWithEphemeralMessage(s, i, "You already voted on this one.")
		}
		if output.Resolved {
			return RespondWithUpdate(s, i, renderDuel(output.Duel), nil)
		}
		return RespondWithUpdate(s, i, renderPoll(output.Poll), voteButtons(output.Poll))
	}

	return RespondWithEphemeralMessage(s, i, "That button doesn't do anything anymore.")
}

// respondWithError renders err as a red embed using the room's error lines
func (c *RondaCommand) respondWithError(ctx context.Context, s Session, i *discordgo.InteractionCreate, err error) error {
	errorType := errorTypeFor(err)
	if errorType == messaging.ErrorTypeUnknown {
		log.Error().Err(err).Str("channel_id", i.ChannelID).Msg("discord interaction failed")
	}

	title, message := "Error", err.Error()
	output, msgErr := c.messagingService.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{ErrorType: errorType})
	if msgErr == nil {
		title, message = output.Title, output.Message
	}
	if errorType == messaging.ErrorTypeNotFound && errors.Is(err, ledger.ErrRoomNotFound) {
		message = "No room in this channel yet. Start one with `/ronda start`."
	}

	return RespondWithError(s, i, title, message)
}
