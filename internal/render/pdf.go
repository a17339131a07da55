// Package render turns export content blocks into binary documents. The
// container formats belong entirely to the underlying libraries; this
// package only maps block kinds to fonts and spacing.
package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/awillits/marginalia/internal/export"
)

// PDF renders the block sequence into a single-column A4 document.
func PDF(blocks []export.Block) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Notes", true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	// Core fonts are cp1252; translate so accented OCR output survives.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, b := range blocks {
		switch b.Kind {
		case export.BlockHeading:
			doc.Ln(4)
			doc.SetFont("Helvetica", "B", 16)
			doc.SetTextColor(0, 0, 0)
			doc.MultiCell(0, 8, tr(b.Text), "", "L", false)
			doc.Ln(1)
		case export.BlockSubheading:
			doc.SetFont("Helvetica", "B", 12)
			doc.SetTextColor(0, 0, 0)
			doc.MultiCell(0, 6, tr(b.Text), "", "L", false)
		case export.BlockBody:
			doc.SetFont("Helvetica", "", 11)
			doc.SetTextColor(0, 0, 0)
			doc.MultiCell(0, 5, tr(b.Text), "", "L", false)
		case export.BlockMeta:
			doc.SetFont("Helvetica", "I", 9)
			doc.SetTextColor(120, 120, 120)
			doc.MultiCell(0, 5, tr(b.Text), "", "L", false)
			doc.Ln(3)
		case export.BlockPlaceholder:
			doc.SetFont("Helvetica", "I", 11)
			doc.SetTextColor(120, 120, 120)
			doc.MultiCell(0, 6, tr(b.Text), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
