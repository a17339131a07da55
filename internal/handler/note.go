package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/awillits/marginalia/internal/auth"
	"github.com/awillits/marginalia/internal/imagestore"
	"github.com/awillits/marginalia/internal/model"
	"github.com/awillits/marginalia/internal/store"
	"github.com/awillits/marginalia/internal/websocket"
)

// untitledNote is the placeholder title for notes created without one.
const untitledNote = "Untitled note"

type NoteHandler struct {
	notes  *store.NoteStore
	images *imagestore.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewNoteHandler(notes *store.NoteStore, images *imagestore.Store, hub *websocket.Hub, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, images: images, hub: hub, logger: logger}
}

type noteRequest struct {
	Title       string `json:"title"`
	Topic       string `json:"topic"`
	Text        string `json:"text"`
	SourceImage string `json:"sourceImage"`
}

// normalize trims the fields and applies the placeholder title. Text is the
// only required field.
func (req *noteRequest) normalize() bool {
	req.Title = strings.TrimSpace(req.Title)
	req.Topic = strings.TrimSpace(req.Topic)
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return false
	}
	if req.Title == "" {
		req.Title = untitledNote
	}
	return true
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	notes, err := h.notes.List(userID)
	if err != nil {
		h.logger.Error("list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load notes")
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.normalize() {
		writeError(w, http.StatusBadRequest, "Note text is required")
		return
	}

	note, err := h.notes.Create(userID, req.Title, req.Topic, req.Text, req.SourceImage)
	if err != nil {
		h.logger.Error("create note", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("note", "created", note.ID, nil))
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	note, err := h.notes.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get note", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load note")
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	existing, err := h.notes.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get note", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load note")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.normalize() {
		writeError(w, http.StatusBadRequest, "Note text is required")
		return
	}

	note, err := h.notes.Update(userID, id, req.Title, req.Topic, req.Text, req.SourceImage)
	if err != nil {
		h.logger.Error("update note", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}

	// A replaced or cleared image is orphaned; delete the old file.
	if existing.SourceImage != "" && existing.SourceImage != note.SourceImage {
		if err := h.images.Remove(existing.SourceImage); err != nil {
			h.logger.Warn("remove replaced source image", "name", existing.SourceImage, "error", err)
		}
	}

	h.hub.Broadcast(websocket.NewMessage("note", "updated", note.ID, nil))
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	note, err := h.notes.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get note", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load note")
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	if err := h.notes.Delete(userID, id); err != nil {
		h.logger.Error("delete note", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	if note.SourceImage != "" {
		if err := h.images.Remove(note.SourceImage); err != nil {
			h.logger.Warn("remove source image", "name", note.SourceImage, "error", err)
		}
	}

	h.hub.Broadcast(websocket.NewMessage("note", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
