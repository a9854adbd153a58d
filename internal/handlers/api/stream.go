package api

import (
	"context"
	"net/http"
	"time"

	"github.com/KirkDiggler/ronda/internal/services/feed"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// stream upgrades to a websocket and pushes a full room snapshot after every
// change. Clients only read; anything they send besides control frames is
// discarded.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)
	roomID := chi.URLParam(r, "roomID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// The request context is not cancelled by a websocket disconnect
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.feedService.Subscribe(ctx, &feed.SubscribeInput{RoomID: roomID})
	if err != nil {
		logger.Warn().Err(err).Str("room_id", roomID).Msg("feed subscription failed")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(writeWait))
		return
	}

	go readLoop(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-sub.Snapshots:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				logger.Debug().Err(err).Str("room_id", roomID).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains the connection so control frames are handled, and cancels
// the subscription once the client goes away
func readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
