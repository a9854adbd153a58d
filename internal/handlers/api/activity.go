package api

import (
	"net/http"
	"time"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/services/activity"
	"github.com/go-chi/chi/v5"
)

type checkInRequest struct {
	DrinkID  string           `json:"drinkId"`
	Caption  string           `json:"caption"`
	PhotoURL string           `json:"photoUrl"`
	Location *models.GeoPoint `json:"location"`
}

type checkInResponse struct {
	CheckIn *models.CheckIn `json:"checkIn"`
	Score   int             `json:"score"`
}

type createEventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Participants []string  `json:"participants"`
	Color        string    `json:"color"`
}

type logEventDrinkRequest struct {
	DrinkID string `json:"drinkId"`
}

func (h *Handler) listCheckIns(w http.ResponseWriter, r *http.Request) {
	output, err := h.activityService.ListCheckIns(r.Context(), &activity.ListCheckInsInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.CheckIns)
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.activityService.CheckIn(r.Context(), &activity.CheckInInput{
		RoomID:   chi.URLParam(r, "roomID"),
		UserID:   UserFromContext(r.Context()),
		DrinkID:  req.DrinkID,
		Caption:  req.Caption,
		PhotoURL: req.PhotoURL,
		Location: req.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkInResponse{CheckIn: output.CheckIn, Score: output.Score})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	output, err := h.activityService.ListEvents(r.Context(), &activity.ListEventsInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Events)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.activityService.CreateEvent(r.Context(), &activity.CreateEventInput{
		RoomID:       chi.URLParam(r, "roomID"),
		CreatedBy:    UserFromContext(r.Context()),
		Title:        req.Title,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Participants: req.Participants,
		Color:        req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, output.Event)
}

func (h *Handler) getActiveEvent(w http.ResponseWriter, r *http.Request) {
	output, err := h.activityService.GetActiveEvent(r.Context(), &activity.GetActiveEventInput{
		RoomID: chi.URLParam(r, "roomID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Event)
}

func (h *Handler) logEventDrink(w http.ResponseWriter, r *http.Request) {
	var req logEventDrinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.activityService.LogEventDrink(r.Context(), &activity.LogEventDrinkInput{
		RoomID:  chi.URLParam(r, "roomID"),
		EventID: chi.URLParam(r, "eventID"),
		UserID:  UserFromContext(r.Context()),
		DrinkID: req.DrinkID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, output.Event)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	output, err := h.activityService.GetEvent(r.Context(), &activity.GetEventInput{
		RoomID:  chi.URLParam(r, "roomID"),
		EventID: chi.URLParam(r, "eventID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Event)
}

func (h *Handler) getEventLeaderboard(w http.ResponseWriter, r *http.Request) {
	output, err := h.activityService.GetEventLeaderboard(r.Context(), &activity.GetEventLeaderboardInput{
		RoomID:  chi.URLParam(r, "roomID"),
		EventID: chi.URLParam(r, "eventID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Scores)
}

// getEventRewind returns the recap personalized for the caller
func (h *Handler) getEventRewind(w http.ResponseWriter, r *http.Request) {
	output, err := h.activityService.GetEventRewind(r.Context(), &activity.GetEventRewindInput{
		RoomID:  chi.URLParam(r, "roomID"),
		EventID: chi.URLParam(r, "eventID"),
		UserID:  UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Rewind)
}
