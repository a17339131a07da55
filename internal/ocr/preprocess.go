package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
)

// maxDimension caps the longer edge before recognition; phone photos are
// routinely 4000px+ and Tesseract gains nothing past this.
const maxDimension = 2400

// Preprocess normalizes an uploaded photo for recognition: decode, convert
// to grayscale, downscale oversized captures, and re-encode as PNG.
func Preprocess(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := 1.0
	if longest := max(w, h); longest > maxDimension {
		scale = float64(maxDimension) / float64(longest)
	}
	// Extreme aspect ratios can round a dimension down to zero.
	dw := max(int(float64(w)*scale), 1)
	dh := max(int(float64(h)*scale), 1)

	gray := image.NewGray(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, bounds, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
