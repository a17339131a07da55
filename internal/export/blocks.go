package export

import "github.com/awillits/marginalia/internal/model"

// BlockKind tags a content block with its role so a document renderer can
// pick fonts and spacing without understanding notes.
type BlockKind string

const (
	BlockHeading     BlockKind = "heading"
	BlockSubheading  BlockKind = "subheading"
	BlockBody        BlockKind = "body"
	BlockMeta        BlockKind = "meta"
	BlockPlaceholder BlockKind = "placeholder"
)

// Block is a style-tagged text fragment handed to a PDF or DOCX renderer.
type Block struct {
	Kind BlockKind
	Text string
}

// Blocks renders the grouped collection as a flat block sequence: one
// heading per topic, then subheading/body/meta per note. An empty collection
// yields a single placeholder block.
func Blocks(notes []model.Note) []Block {
	if len(notes) == 0 {
		return []Block{{Kind: BlockPlaceholder, Text: EmptyPlaceholder}}
	}

	var blocks []Block
	for _, g := range GroupByTopic(notes) {
		blocks = append(blocks, Block{Kind: BlockHeading, Text: g.Topic})
		for _, n := range g.Notes {
			blocks = append(blocks,
				Block{Kind: BlockSubheading, Text: n.Title},
				Block{Kind: BlockBody, Text: n.Text},
				Block{Kind: BlockMeta, Text: n.CreatedAt.UTC().Format("January 2, 2006 15:04")},
			)
		}
	}
	return blocks
}
