package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/awillits/marginalia/internal/imagestore"
	"github.com/awillits/marginalia/internal/ocr"
	"github.com/awillits/marginalia/internal/topic"
)

// maxImageBytes caps uploaded captures at 20 MiB; phone camera JPEGs sit
// well under this.
const maxImageBytes = 20 << 20

type OCRHandler struct {
	engine ocr.Engine
	images *imagestore.Store
	logger *slog.Logger
}

func NewOCRHandler(engine ocr.Engine, images *imagestore.Store, logger *slog.Logger) *OCRHandler {
	return &OCRHandler{engine: engine, images: images, logger: logger}
}

type ocrResponse struct {
	Text           string `json:"text"`
	SourceImage    string `json:"sourceImage"`
	SuggestedTopic string `json:"suggestedTopic,omitempty"`
}

// Recognize accepts a multipart "image" upload, stores the original, and
// returns the extracted text with a topic suggestion. The client reviews and
// edits the text before saving it as a note.
func (h *OCRHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	prepared, err := ocr.Preprocess(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Unsupported or corrupted image")
		return
	}

	text, err := h.engine.Recognize(r.Context(), prepared)
	if err != nil {
		h.logger.Error("ocr recognize", "error", err)
		writeError(w, http.StatusInternalServerError, "Text recognition failed")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	name, err := h.images.Save(data, contentType)
	if err != nil {
		h.logger.Error("save source image", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	writeJSON(w, http.StatusOK, ocrResponse{
		Text:           text,
		SourceImage:    name,
		SuggestedTopic: topic.Suggest(text),
	})
}
