package api

import (
	"net/http"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/go-chi/chi/v5"
)

type createDuelRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	OpponentID      string `json:"opponentId"`
	Wager           int    `json:"wager"`
	DurationMinutes int    `json:"durationMinutes"`
}

type resolveDuelRequest struct {
	// WinnerID is empty or "draw" for a draw
	WinnerID string `json:"winnerId"`
}

type pollResponse struct {
	Duel *models.Duel `json:"duel"`
	Poll *models.Poll `json:"poll"`
}

type castVoteRequest struct {
	Option string `json:"option"`
}

type castVoteResponse struct {
	Poll     *models.Poll `json:"poll"`
	Duel     *models.Duel `json:"duel"`
	Accepted bool         `json:"accepted"`
	Resolved bool         `json:"resolved"`
}

func (h *Handler) listDuels(w http.ResponseWriter, r *http.Request) {
	output, err := h.duelService.ListDuels(r.Context(), &duel.ListDuelsInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Duels)
}

func (h *Handler) createDuel(w http.ResponseWriter, r *http.Request) {
	var req createDuelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.duelService.CreateDuel(r.Context(), &duel.CreateDuelInput{
		RoomID:       chi.URLParam(r, "roomID"),
		Title:        req.Title,
		Description:  req.Description,
		ChallengerID: UserFromContext(r.Context()),
		OpponentID:   req.OpponentID,
		Wager:        req.Wager,
		Duration:     time.Duration(req.DurationMinutes) * time.Minute,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, stakeResponse{Duel: output.Duel, Balance: output.Balance})
}

func (h *Handler) getDuel(w http.ResponseWriter, r *http.Request) {
	output, err := h.duelService.GetDuel(r.Context(), &duel.GetDuelInput{
		RoomID: chi.URLParam(r, "roomID"),
		DuelID: chi.URLParam(r, "duelID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Duel)
}

func (h *Handler) acceptDuel(w http.ResponseWriter, r *http.Request) {
	output, err := h.duelService.AcceptDuel(r.Context(), &duel.AcceptDuelInput{
		RoomID: chi.URLParam(r, "roomID"),
		DuelID: chi.URLParam(r, "duelID"),
		UserID: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stakeResponse{Duel: output.Duel, Balance: output.Balance})
}

func (h *Handler) declineDuel(w http.ResponseWriter, r *http.Request) {
	_, err := h.duelService.DeclineDuel(r.Context(), &duel.DeclineDuelInput{
		RoomID: chi.URLParam(r, "roomID"),
		DuelID: chi.URLParam(r, "duelID"),
		UserID: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resolveDuel(w http.ResponseWriter, r *http.Request) {
	var req resolveDuelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.duelService.ResolveDuel(r.Context(), &duel.ResolveDuelInput{
		RoomID:     chi.URLParam(r, "roomID"),
		DuelID:     chi.URLParam(r, "duelID"),
		WinnerID:   req.WinnerID,
		ResolvedBy: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Duel)
}

func (h *Handler) initiateDuelPoll(w http.ResponseWriter, r *http.Request) {
	output, err := h.duelService.InitiateDuelPoll(r.Context(), &duel.InitiateDuelPollInput{
		RoomID:      chi.URLParam(r, "roomID"),
		DuelID:      chi.URLParam(r, "duelID"),
		RequestedBy: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, pollResponse{Duel: output.Duel, Poll: output.Poll})
}

func (h *Handler) listPolls(w http.ResponseWriter, r *http.Request) {
	output, err := h.duelService.ListPolls(r.Context(), &duel.ListPollsInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Polls)
}

func (h *Handler) castVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.duelService.CastVote(r.Context(), &duel.CastVoteInput{
		RoomID: chi.URLParam(r, "roomID"),
		PollID: chi.URLParam(r, "pollID"),
		Option: req.Option,
		UserID: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, castVoteResponse{
		Poll:     output.Poll,
		Duel:     output.Duel,
		Accepted: output.Accepted,
		Resolved: output.Resolved,
	})
}
