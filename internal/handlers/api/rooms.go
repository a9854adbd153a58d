package api

import (
	"net/http"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/services/feed"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/go-chi/chi/v5"
)

type createRoomRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PhotoURL    string `json:"photoUrl"`
}

type joinRoomRequest struct {
	InviteCode string `json:"inviteCode"`
}

type joinRoomResponse struct {
	Room          *models.Room `json:"room"`
	AlreadyMember bool         `json:"alreadyMember"`
}

type updateDrinksRequest struct {
	Drinks []models.Drink `json:"drinks"`
}

type addDrinkResponse struct {
	Count int `json:"count"`
	Score int `json:"score"`
}

type balanceResponse struct {
	UserID  string `json:"userId"`
	Balance int    `json:"balance"`
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	output, err := h.roomService.ListRooms(r.Context(), &room.ListRoomsInput{
		UserID: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Rooms)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.roomService.CreateRoom(r.Context(), &room.CreateRoomInput{
		Title:       req.Title,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		OwnerID:     UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, output.Room)
}

func (h *Handler) joinRoomByCode(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	h.join(w, r, &room.JoinRoomInput{
		InviteCode: req.InviteCode,
		UserID:     UserFromContext(r.Context()),
	})
}

func (h *Handler) joinRoom(w http.ResponseWriter, r *http.Request) {
	h.join(w, r, &room.JoinRoomInput{
		RoomID: chi.URLParam(r, "roomID"),
		UserID: UserFromContext(r.Context()),
	})
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request, input *room.JoinRoomInput) {
	output, err := h.roomService.JoinRoom(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, joinRoomResponse{
		Room:          output.Room,
		AlreadyMember: output.AlreadyMember,
	})
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, roomFromContext(r.Context()))
}

func (h *Handler) leaveRoom(w http.ResponseWriter, r *http.Request) {
	_, err := h.roomService.LeaveRoom(r.Context(), &room.LeaveRoomInput{
		RoomID: chi.URLParam(r, "roomID"),
		UserID: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateDrinks(w http.ResponseWriter, r *http.Request) {
	var req updateDrinksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.roomService.UpdateDrinks(r.Context(), &room.UpdateDrinksInput{
		RoomID:  chi.URLParam(r, "roomID"),
		ActorID: UserFromContext(r.Context()),
		Drinks:  req.Drinks,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Room)
}

func (h *Handler) addDrink(w http.ResponseWriter, r *http.Request) {
	output, err := h.roomService.AddDrink(r.Context(), &room.AddDrinkInput{
		RoomID:  chi.URLParam(r, "roomID"),
		UserID:  UserFromContext(r.Context()),
		DrinkID: chi.URLParam(r, "drinkID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, addDrinkResponse{Count: output.Count, Score: output.Score})
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	output, err := h.roomService.GetLeaderboard(r.Context(), &room.GetLeaderboardInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Entries)
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := UserFromContext(r.Context())
	output, err := h.roomService.GetBalance(r.Context(), &room.GetBalanceInput{
		RoomID: chi.URLParam(r, "roomID"),
		UserID: userID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Balance: output.Balance})
}

func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	output, err := h.feedService.GetSnapshot(r.Context(), &feed.GetSnapshotInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Snapshot)
}
