// Package ocr extracts text from captured page images. Recognition runs
// on-device through Tesseract; handlers depend on the Engine interface so
// tests can substitute a fake.
package ocr

import "context"

// Engine performs text recognition on an encoded image.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
