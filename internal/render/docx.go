package render

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/awillits/marginalia/internal/export"
)

// DOCX renders the block sequence into a Word document. Sizes are
// half-points, per the OOXML run property convention.
func DOCX(blocks []export.Block) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	for _, b := range blocks {
		p := doc.AddParagraph()
		switch b.Kind {
		case export.BlockHeading:
			p.AddText(b.Text).Size("32").Bold()
		case export.BlockSubheading:
			p.AddText(b.Text).Size("24").Bold()
		case export.BlockBody:
			p.AddText(b.Text).Size("22")
		case export.BlockMeta:
			p.AddText(b.Text).Size("18").Italic().Color("777777")
		case export.BlockPlaceholder:
			p.AddText(b.Text).Size("22").Italic()
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}
