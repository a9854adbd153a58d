package api

import (
	"net/http"
	"strings"

	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/services/user"
)

type upsertProfileRequest struct {
	Username       string `json:"username"`
	Age            int    `json:"age"`
	PhotoURL       string `json:"photoUrl"`
	AcceptedPolicy bool   `json:"acceptedPolicy"`
}

type usersResponse struct {
	Users []*models.User      `json:"users"`
	Names map[string]string `json:"names"`
}

func (h *Handler) upsertProfile(w http.ResponseWriter, r *http.Request) {
	var req upsertProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.userService.UpsertProfile(r.Context(), &user.UpsertProfileInput{
		UserID:         UserFromContext(r.Context()),
		Username:       req.Username,
		Age:            req.Age,
		PhotoURL:       req.PhotoURL,
		AcceptedPolicy: req.AcceptedPolicy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.User)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	output, err := h.userService.GetUser(r.Context(), &user.GetUserInput{
		UserID: UserFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.User)
}

// listUsers looks up ?ids=a,b,c
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	output, err := h.userService.GetUsers(r.Context(), &user.GetUsersInput{UserIDs: ids})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usersResponse{Users: output.Users, Names: output.Names})
}
