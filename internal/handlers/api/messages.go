package api

import (
	"net/http"
	"strconv"

	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/services/chat"
	"github.com/go-chi/chi/v5"
)

type sendMessageRequest struct {
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl"`
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, validation.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	output, err := h.chatService.ListMessages(r.Context(), &chat.ListMessagesInput{
		RoomID: chi.URLParam(r, "roomID"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Messages)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	output, err := h.chatService.SendMessage(r.Context(), &chat.SendMessageInput{
		RoomID:   chi.URLParam(r, "roomID"),
		AuthorID: UserFromContext(r.Context()),
		Text:     req.Text,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, output.Message)
}
