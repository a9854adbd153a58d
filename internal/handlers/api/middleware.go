package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/go-chi/chi/v5"
)

// UserHeader carries the caller's identity, set by the upstream auth layer
const UserHeader = "X-User-ID"

type userContextKey struct{}

type roomContextKey struct{}

// UserFromContext returns the caller's user ID
func UserFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userContextKey{}).(string)
	return userID
}

func roomFromContext(ctx context.Context) *models.Room {
	r, _ := ctx.Value(roomContextKey{}).(*models.Room)
	return r
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			writeError(w, r, errMissingUser)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireMember loads the route's room and rejects callers outside it
func (h *Handler) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		output, err := h.roomService.GetRoom(r.Context(), &room.GetRoomInput{
			RoomID: chi.URLParam(r, "roomID"),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		if !output.Room.IsMember(UserFromContext(r.Context())) {
			writeError(w, r, room.ErrNotRoomMember)
			return
		}

		ctx := context.WithValue(r.Context(), roomContextKey{}, output.Room)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %v", validation.ErrInvalidInput, err)
	}
	return nil
}
