package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/ronda/internal/common/clock"
	"github.com/KirkDiggler/ronda/internal/common/uuid"
	"github.com/KirkDiggler/ronda/internal/config"
	"github.com/KirkDiggler/ronda/internal/handlers/api"
	"github.com/KirkDiggler/ronda/internal/handlers/discord"
	"github.com/KirkDiggler/ronda/internal/logging"
	"github.com/KirkDiggler/ronda/internal/metrics"
	chatRepo "github.com/KirkDiggler/ronda/internal/repositories/chat"
	"github.com/KirkDiggler/ronda/internal/repositories/checkin"
	"github.com/KirkDiggler/ronda/internal/repositories/event"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	userRepo "github.com/KirkDiggler/ronda/internal/repositories/user"
	"github.com/KirkDiggler/ronda/internal/services/activity"
	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/KirkDiggler/ronda/internal/services/feed"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/KirkDiggler/ronda/internal/services/user"
	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	realClock := &clock.DefaultClock{}
	ids := uuid.New()
	m := metrics.New()

	// Initialize repositories
	ledgerRepo, err := ledger.NewRedis(&ledger.Config{
		RedisClient:  redisClient,
		MaxTxRetries: cfg.Ledger.MaxTxRetries,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ledger repository")
	}

	messageRepo, err := chatRepo.NewRedis(&chatRepo.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chat repository")
	}

	checkInRepo, err := checkin.NewRedis(&checkin.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create check-in repository")
	}

	eventRepo, err := event.NewRedis(&event.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event repository")
	}

	profileRepo, err := userRepo.NewRedis(&userRepo.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user repository")
	}

	// The Discord session is shared by the bot and the chat relay
	var session *discordgo.Session
	var relay chat.Relay
	if cfg.Discord.Token != "" {
		session, err = discord.NewSession(cfg.Discord.Token)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Discord session")
		}
		discordRelay, err := discord.NewRelay(session)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Discord relay")
		}
		relay = discordRelay
	}

	// Initialize services
	messagingService, err := messaging.New(&messaging.Config{Seed: cfg.Ledger.MessageSeed})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create messaging service")
	}

	userService, err := user.New(&user.Config{
		UserRepo: profileRepo,
		Clock:    realClock,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user service")
	}

	roomService, err := room.New(&room.Config{
		LedgerRepo:    ledgerRepo,
		Clock:         realClock,
		UUIDGenerator: ids,
		Metrics:       m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create room service")
	}

	chatService, err := chat.New(&chat.Config{
		ChatRepo:      messageRepo,
		LedgerRepo:    ledgerRepo,
		Relay:         relay,
		Clock:         realClock,
		UUIDGenerator: ids,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chat service")
	}

	betService, err := bet.New(&bet.Config{
		LedgerRepo:       ledgerRepo,
		ChatService:      chatService,
		MessagingService: messagingService,
		Clock:            realClock,
		UUIDGenerator:    ids,
		Metrics:          m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bet service")
	}

	duelService, err := duel.New(&duel.Config{
		LedgerRepo:       ledgerRepo,
		ChatService:      chatService,
		MessagingService: messagingService,
		UserService:      userService,
		Clock:            realClock,
		UUIDGenerator:    ids,
		Metrics:          m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create duel service")
	}

	feedService, err := feed.New(&feed.Config{
		LedgerRepo: ledgerRepo,
		Clock:      realClock,
		Metrics:    m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create feed service")
	}

	activityService, err := activity.New(&activity.Config{
		LedgerRepo:    ledgerRepo,
		CheckInRepo:   checkInRepo,
		EventRepo:     eventRepo,
		Clock:         realClock,
		UUIDGenerator: ids,
		UserService:   userService,
		Metrics:       m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create activity service")
	}

	// Expired duels are handed to a room vote
	watcher, err := duel.NewWatcher(&duel.WatcherConfig{
		Escalator: duelService,
		Interval:  cfg.Ledger.WatchInterval,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create duel watcher")
	}
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("duel watcher stopped")
		}
	}()

	handler, err := api.New(&api.Config{
		RoomService:     roomService,
		BetService:      betService,
		DuelService:     duelService,
		ChatService:     chatService,
		FeedService:     feedService,
		ActivityService: activityService,
		UserService:     userService,
		Metrics:         m,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create API handler")
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	var bot *discord.Bot
	if session != nil {
		bot, err = discord.New(&discord.Config{
			Session:          session,
			ApplicationID:    cfg.Discord.ApplicationID,
			GuildID:          cfg.Discord.GuildID,
			RoomService:      roomService,
			BetService:       betService,
			DuelService:      duelService,
			MessagingService: messagingService,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Discord bot")
		}
		if err := bot.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start Discord bot")
		}
	} else {
		log.Info().Msg("DISCORD_TOKEN not set, running without the Discord bot")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	if bot != nil {
		if err := bot.Stop(); err != nil {
			log.Error().Err(err).Msg("error stopping bot")
		}
	}

	log.Info().Msg("shut down")
}
