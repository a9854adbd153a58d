package api

import (
	"net/http"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/go-chi/chi/v5"
)

type createBetRequest struct {
	Title        string    `json:"title"`
	TargetUserID string    `json:"targetUserId"`
	Odds         float64   `json:"odds"`
	Deadline     time.Time `json:"deadline"`
	Stake        int       `json:"stake"`
}

type placeWagerRequest struct {
	Amount int `json:"amount"`
}

type resolveBetRequest struct {
	Status models.BetStatus `json:"status"`
}

type resolveBetResponse struct {
	Bet       *models.Bet    `json:"bet"`
	Payouts   map[string]int `json:"payouts"`
	TotalPaid int            `json:"totalPaid"`
}

type stakeResponse struct {
	Bet     *models.Bet  `json:"bet,omitempty"`
	Duel    *models.Duel `json:"duel,omitempty"`
	Balance int          `json:"balance"`
}

func (h *Handler) listBets(w http.ResponseWriter, r *http.Request) {
	output, err := h.betService.ListBets(r.Context(), &bet.ListBetsInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Bets)
}

func (h *Handler) createBet(w http.ResponseWriter, r *http.Request) {
	var req createBetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.betService.CreateBet(r.Context(), &bet.CreateBetInput{
		RoomID:         chi.URLParam(r, "roomID"),
		Title:          req.Title,
		TargetUserID:   req.TargetUserID,
		ProposerUserID: UserFromContext(r.Context()),
		Odds:           req.Odds,
		Deadline:       req.Deadline,
		Stake:          req.Stake,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, stakeResponse{Bet: output.Bet, Balance: output.Balance})
}

func (h *Handler) getBet(w http.ResponseWriter, r *http.Request) {
	output, err := h.betService.GetBet(r.Context(), &bet.GetBetInput{
		RoomID: chi.URLParam(r, "roomID"),
		BetID:  chi.URLParam(r, "betID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Bet)
}

func (h *Handler) placeWager(w http.ResponseWriter, r *http.Request) {
	var req placeWagerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.betService.PlaceWager(r.Context(), &bet.PlaceWagerInput{
		RoomID: chi.URLParam(r, "roomID"),
		BetID:  chi.URLParam(r, "betID"),
		UserID: UserFromContext(r.Context()),
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stakeResponse{Bet: output.Bet, Balance: output.Balance})
}

func (h *Handler) resolveBet(w http.ResponseWriter, r *http.Request) {
	var req resolveBetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.betService.ResolveBet(r.Context(), &bet.ResolveBetInput{
		RoomID:     chi.URLParam(r, "roomID"),
		BetID:      chi.URLParam(r, "betID"),
		Status:     req.Status,
		ResolvedBy: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resolveBetResponse{
		Bet:       output.Bet,
		Payouts:   output.Payouts,
		TotalPaid: output.TotalPaid,
	})
}
