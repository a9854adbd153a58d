package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/checkin"
	"github.com/KirkDiggler/ronda/internal/repositories/event"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	userRepo "github.com/KirkDiggler/ronda/internal/repositories/user"
	"github.com/KirkDiggler/ronda/internal/services/activity"
	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/rs/zerolog/hlog"
)

// errMissingUser is returned when a request carries no X-User-ID header
var errMissingUser = errors.New("missing user identity")

type errorMapping struct {
	status int
	code   string
	errs   []error
}

// errorMappings is checked in order; the first match wins
var errorMappings = []errorMapping{
	{http.StatusUnauthorized, "unauthenticated", []error{errMissingUser}},
	{http.StatusBadRequest, "invalid_input", []error{
		validation.ErrInvalidInput,
		models.ErrInvalidAmount,
		room.ErrRoomIdentifierNeeded,
		bet.ErrInvalidResolution,
		bet.ErrDeadlinePassed,
		duel.ErrSelfDuel,
		duel.ErrInvalidWinner,
		duel.ErrInvalidOption,
	}},
	{http.StatusForbidden, "forbidden", []error{
		room.ErrNotRoomMember,
		room.ErrNotRoomAdmin,
		room.ErrOwnerCannotLeave,
		bet.ErrNotRoomMember,
		bet.ErrNotRoomAdmin,
		duel.ErrNotRoomMember,
		duel.ErrNotRoomAdmin,
		duel.ErrNotDuelOpponent,
		chat.ErrNotRoomMember,
		activity.ErrNotRoomMember,
	}},
	{http.StatusNotFound, "not_found", []error{
		ledger.ErrRoomNotFound,
		ledger.ErrBetNotFound,
		ledger.ErrDuelNotFound,
		ledger.ErrPollNotFound,
		event.ErrEventNotFound,
		checkin.ErrCheckInNotFound,
		userRepo.ErrUserNotFound,
		room.ErrDrinkNotFound,
		activity.ErrDrinkNotFound,
		activity.ErrNoActiveEvent,
	}},
	{http.StatusConflict, "insufficient_credits", []error{models.ErrInsufficientCredits}},
	{http.StatusConflict, "conflict", []error{
		bet.ErrBetNotPending,
		duel.ErrInvalidDuelState,
		duel.ErrDuelAlreadyResolved,
		duel.ErrPollClosed,
		room.ErrDuplicateDrink,
		room.ErrInviteCodeExhausted,
		activity.ErrEventNotActive,
		ledger.ErrTransactionConflict,
		ledger.ErrInviteCodeTaken,
		event.ErrUpdateConflict,
	}},
}

// statusFor maps a service error to an HTTP status and a stable error code
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		for _, target := range m.errs {
			if errors.Is(err, target) {
				return m.status, m.code
			}
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError renders err as JSON. Internal errors are logged and their
// details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	resp := errorResponse{Error: code}
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	} else {
		resp.Message = err.Error()
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
