package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	ronda      *RondaCommand
	config     *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Session is an unopened Discord session, see NewSession
	Session *discordgo.Session

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	RoomService      room.Service
	BetService       bet.Service
	DuelService      duel.Service
	MessagingService messaging.Service
}

// NewSession creates a Discord session for a bot token. The session is shared
// by the bot and the chat relay.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return session, nil
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}

	ronda, err := NewRondaCommand(&RondaCommandConfig{
		RoomService:      cfg.RoomService,
		BetService:       cfg.BetService,
		DuelService:      cfg.DuelService,
		MessagingService: cfg.MessagingService,
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		session:    cfg.Session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		ronda:      ronda,
		config:     cfg,
	}

	// Register the interaction handler
	cfg.Session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.RegisterCommand(b.ronda); err != nil {
		return fmt.Errorf("failed to register ronda command: %w", err)
	}

	log.Info().Msg("discord bot running")
	return nil
}

// Stop removes the registered commands and closes the connection
func (b *Bot) Stop() error {
	appID := b.appID()

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			log.Warn().Err(err).Str("command", cmdName).Str("command_id", cmdID).Msg("failed to delete command")
		} else {
			log.Debug().Str("command", cmdName).Str("command_id", cmdID).Msg("deleted command")
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	// If guild ID is provided, register command for that specific guild
	// Otherwise, register it globally
	guildID := b.config.GuildID
	if guildID != "" {
		log.Info().Str("command", cmd.GetName()).Str("guild_id", guildID).Msg("registering guild command")
	} else {
		log.Info().Str("command", cmd.GetName()).Msg("registering global command")
	}

	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), guildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	// Store the command handler and its ID
	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID

	return nil
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if h, ok := b.commands[name]; ok {
			if err := h.Handle(ctx, s, i); err != nil {
				log.Error().Err(err).Str("command", name).Msg("failed to handle command")
			}
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if !strings.HasPrefix(customID, componentPrefix) {
			return
		}
		if err := b.ronda.HandleComponent(ctx, s, i); err != nil {
			log.Error().Err(err).Str("custom_id", customID).Msg("failed to handle component interaction")
		}
	}
}
