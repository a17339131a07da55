package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/awillits/marginalia/internal/auth"
	"github.com/awillits/marginalia/internal/export"
	"github.com/awillits/marginalia/internal/render"
	"github.com/awillits/marginalia/internal/store"
)

type ExportHandler struct {
	notes  *store.NoteStore
	logger *slog.Logger
}

func NewExportHandler(notes *store.NoteStore, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{notes: notes, logger: logger}
}

// Export streams the user's full collection in the requested format as a
// file download.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := auth.UserID(r.Context())
	notes, err := h.notes.List(userID)
	if err != nil {
		h.logger.Error("list notes for export", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load notes")
		return
	}

	var (
		body        []byte
		contentType string
		ext         string
	)

	switch format {
	case export.FormatText:
		body = []byte(export.Text(notes))
		contentType = "text/plain; charset=utf-8"
		ext = "txt"
	case export.FormatCSV:
		body = []byte(export.CSV(notes))
		contentType = "text/csv; charset=utf-8"
		ext = "csv"
	case export.FormatJSON:
		body, err = export.JSON(notes)
		contentType = "application/json"
		ext = "json"
	case export.FormatPDF:
		body, err = render.PDF(export.Blocks(notes))
		contentType = "application/pdf"
		ext = "pdf"
	case export.FormatDOCX:
		body, err = render.DOCX(export.Blocks(notes))
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		ext = "docx"
	}
	if err != nil {
		h.logger.Error("render export", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	filename := fmt.Sprintf("notes-%s.%s", time.Now().UTC().Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.Write(body)
}
