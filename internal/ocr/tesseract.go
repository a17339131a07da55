package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is the production Engine, backed by a local Tesseract install.
type Tesseract struct {
	mu       sync.RWMutex
	language string
}

// NewTesseract creates an engine for the given language code ("eng", "deu",
// "eng+deu", ...). An empty language falls back to English.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

// SetLanguage switches the recognition language for subsequent calls.
func (t *Tesseract) SetLanguage(language string) {
	if language == "" {
		language = "eng"
	}
	t.mu.Lock()
	t.language = language
	t.mu.Unlock()
}

// Recognize runs Tesseract over the image and returns the extracted text
// with surrounding whitespace trimmed. A gosseract client is not safe for
// reuse across goroutines, so each call gets its own.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.RLock()
	language := t.language
	t.mu.RUnlock()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
