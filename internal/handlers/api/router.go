package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/KirkDiggler/ronda/internal/metrics"
	"github.com/KirkDiggler/ronda/internal/services/activity"
	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/KirkDiggler/ronda/internal/services/feed"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/KirkDiggler/ronda/internal/services/user"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Config holds the services exposed over HTTP
type Config struct {
	RoomService     room.Service
	BetService      bet.Service
	DuelService     duel.Service
	ChatService     chat.Service
	FeedService     feed.Service
	ActivityService activity.Service
	UserService     user.Service

	// Metrics is optional; when set it is served on /metrics
	Metrics *metrics.Metrics

	// AllowedOrigins limits websocket origins; empty allows any
	AllowedOrigins []string
}

// Handler serves the HTTP API
type Handler struct {
	roomService     room.Service
	betService      bet.Service
	duelService     duel.Service
	chatService     chat.Service
	feedService     feed.Service
	activityService activity.Service
	userService     user.Service
	metrics         *metrics.Metrics
	upgrader        websocket.Upgrader
}

// New creates a new API handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RoomService == nil || cfg.BetService == nil || cfg.DuelService == nil ||
		cfg.ChatService == nil || cfg.FeedService == nil || cfg.ActivityService == nil ||
		cfg.UserService == nil {
		return nil, errors.New("all services are required")
	}

	return &Handler{
		roomService:     cfg.RoomService,
		betService:      cfg.BetService,
		duelService:     cfg.DuelService,
		chatService:     cfg.ChatService,
		feedService:     cfg.FeedService,
		activityService: cfg.ActivityService,
		userService:     cfg.UserService,
		metrics:         cfg.Metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
	}, nil
}

// Router builds the route tree
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(h.logAccess))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.health)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}

	r.Route("/users", func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/", h.listUsers)
		r.Get("/me", h.getProfile)
		r.Put("/me", h.upsertProfile)
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/", h.listRooms)
		r.Post("/", h.createRoom)
		r.Post("/join", h.joinRoomByCode)

		r.Route("/{roomID}", func(r chi.Router) {
			r.Post("/join", h.joinRoom)

			r.Group(func(r chi.Router) {
				r.Use(h.requireMember)

				r.Get("/", h.getRoom)
				r.Post("/leave", h.leaveRoom)
				r.Put("/drinks", h.updateDrinks)
				r.Post("/drinks/{drinkID}", h.addDrink)
				r.Get("/leaderboard", h.getLeaderboard)
				r.Get("/balance", h.getBalance)
				r.Get("/snapshot", h.getSnapshot)
				r.Get("/stream", h.stream)

				r.Get("/bets", h.listBets)
				r.Post("/bets", h.createBet)
				r.Get("/bets/{betID}", h.getBet)
				r.Post("/bets/{betID}/wagers", h.placeWager)
				r.Post("/bets/{betID}/resolve", h.resolveBet)

				r.Get("/duels", h.listDuels)
				r.Post("/duels", h.createDuel)
				r.Get("/duels/{duelID}", h.getDuel)
				r.Post("/duels/{duelID}/accept", h.acceptDuel)
				r.Post("/duels/{duelID}/decline", h.declineDuel)
				r.Post("/duels/{duelID}/resolve", h.resolveDuel)
				r.Post("/duels/{duelID}/poll", h.initiateDuelPoll)

				r.Get("/polls", h.listPolls)
				r.Post("/polls/{pollID}/votes", h.castVote)

				r.Get("/messages", h.listMessages)
				r.Post("/messages", h.sendMessage)

				r.Get("/checkins", h.listCheckIns)
				r.Post("/checkins", h.checkIn)

				r.Get("/events", h.listEvents)
				r.Post("/events", h.createEvent)
				r.Get("/events/active", h.getActiveEvent)
				r.Get("/events/{eventID}", h.getEvent)
				r.Get("/events/{eventID}/leaderboard", h.getEventLeaderboard)
				r.Get("/events/{eventID}/rewind", h.getEventRewind)
				r.Post("/events/{eventID}/drinks", h.logEventDrink)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) logAccess(r *http.Request, status, size int, duration time.Duration) {
	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}

	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("route", route).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")

	h.metrics.ObserveRequest(r.Method, route, status)
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}

	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
