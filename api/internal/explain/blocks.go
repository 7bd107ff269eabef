package explain

import "strings"

type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockBullet    BlockKind = "bullet"
)

type Block struct {
	Kind  BlockKind `json:"kind"`
	Nodes []Node    `json:"nodes"`
}

// RenderBlocks lays out section content: blank lines are skipped and any line
// containing "* " becomes a bullet with that first marker removed.
func RenderBlocks(content string) []Block {
	var blocks []Block
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "* ") {
			blocks = append(blocks, Block{
				Kind:  BlockBullet,
				Nodes: FormatInline(strings.Replace(line, "* ", "", 1)),
			})
			continue
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Nodes: FormatInline(line)})
	}
	return blocks
}

// RenderPlain renders unstructured text line by line, blank lines included.
func RenderPlain(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, Block{Kind: BlockParagraph, Nodes: FormatInline(line)})
	}
	return blocks
}

// RenderedSection is a Section with its display blocks.
type RenderedSection struct {
	Section
	Tab    string  `json:"tab"`
	Blocks []Block `json:"blocks"`
}

// Document is everything a front-end needs to show one explanation.
type Document struct {
	Language string            `json:"language"`
	Sections []RenderedSection `json:"sections"`
	// Plain is set only when no section could be parsed.
	Plain []Block `json:"plain,omitempty"`
}

// BuildDocument runs the parse and format chain over raw explanation text.
func BuildDocument(language, text string) Document {
	doc := Document{Language: language, Sections: []RenderedSection{}}
	for _, s := range ParseSections(text) {
		doc.Sections = append(doc.Sections, RenderedSection{
			Section: s,
			Tab:     s.TabValue(),
			Blocks:  RenderBlocks(s.Content),
		})
	}
	if len(doc.Sections) == 0 {
		doc.Plain = RenderPlain(text)
	}
	return doc
}
