package handler

import (
	"log/slog"
	"net/http"

	"github.com/awillits/marginalia/internal/auth"
	"github.com/awillits/marginalia/internal/store"
	"github.com/awillits/marginalia/internal/topic"
)

type TopicHandler struct {
	notes  *store.NoteStore
	logger *slog.Logger
}

func NewTopicHandler(notes *store.NoteStore, logger *slog.Logger) *TopicHandler {
	return &TopicHandler{notes: notes, logger: logger}
}

// List returns the topics already in use, most recently used first, for the
// client's autocomplete.
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	topics, err := h.notes.Topics(userID)
	if err != nil {
		h.logger.Error("list topics", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load topics")
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

type suggestRequest struct {
	Text string `json:"text"`
}

// Suggest proposes a topic for a piece of text.
func (h *TopicHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"topic": topic.Suggest(req.Text)})
}
