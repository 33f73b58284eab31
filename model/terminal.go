package model

import "fmt"

// TerminalLayerID is the ID of the terminal (text) layer
const TerminalLayerID = "0"

// Node tags of the terminal layer
const (
	NodeTagWord  = "Word"
	NodeTagPunct = "Punctuation"
)

// Attribute keys of terminal nodes
const (
	AttrText      = "text"
	AttrParagraph = "paragraph"
	AttrParaPos   = "paragraph_position"
)

// Token is one tokenized input symbol for the terminal layer
type Token struct {
	Text      string
	Punct     bool
	Paragraph int // 1-based paragraph number; 0 is treated as paragraph 1
}

// Terminal is a node of the terminal layer: a word or punctuation mark
// anchored to its position in the source text. Terminals are built in one
// batch and never mutated afterwards.
type Terminal struct {
	*Node
}

// Text returns the literal text of the terminal
func (t *Terminal) Text() string {
	text, _ := t.attrib[AttrText].(string)
	return text
}

// Position returns the global position of the terminal, starting at 0
func (t *Terminal) Position() int {
	return nodeNumber(t.id)
}

// Punct reports whether the terminal is a punctuation mark
func (t *Terminal) Punct() bool {
	return t.tag == NodeTagPunct
}

// Paragraph returns the 1-based paragraph number of the terminal
func (t *Terminal) Paragraph() int {
	para, _ := t.attrib[AttrParagraph].(int)
	return para
}

// ParaPos returns the 0-based position of the terminal inside its paragraph
func (t *Terminal) ParaPos() int {
	pos, _ := t.attrib[AttrParaPos].(int)
	return pos
}

// TerminalLayer is the strictly ordered layer of terminals. Order is a
// total order matching source-text position: gapless, no duplicates.
type TerminalLayer struct {
	layer *Layer
}

// BuildTerminals creates the terminal layer of a passage in one batch from
// an ordered token sequence, assigning positions 0..n-1. Returns
// ErrEmptyInput for an empty sequence and ErrDuplicateLayer if the passage
// already has a terminal layer. Any later textual change requires
// rebuilding the layer and reattaching the foundational layer on top.
func BuildTerminals(p *Passage, tokens []Token) (*TerminalLayer, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}
	layer, err := NewLayer(p, TerminalLayerID, nil)
	if err != nil {
		return nil, err
	}

	paraPos := 0
	lastPara := 0
	for position, token := range tokens {
		paragraph := token.Paragraph
		if paragraph < 1 {
			paragraph = 1
		}
		if paragraph != lastPara {
			paraPos = 0
			lastPara = paragraph
		}

		tag := NodeTagWord
		if token.Punct {
			tag = NodeTagPunct
		}
		id := fmt.Sprintf("%s%s%d", TerminalLayerID, NodeIDSeparator, position)
		_, err := p.CreateNodeWithID(layer, id, tag, Metadata{
			AttrText:      token.Text,
			AttrParagraph: paragraph,
			AttrParaPos:   paraPos,
		})
		if err != nil {
			return nil, err
		}
		paraPos++
	}

	return &TerminalLayer{layer: layer}, nil
}

// TerminalLayerOf wraps the existing terminal layer of a passage
func TerminalLayerOf(p *Passage) (*TerminalLayer, bool) {
	l, ok := p.Layer(TerminalLayerID)
	if !ok {
		return nil, false
	}
	return &TerminalLayer{layer: l}, true
}

// Layer returns the underlying generic layer
func (tl *TerminalLayer) Layer() *Layer { return tl.layer }

// Terminals returns all terminals in position order
func (tl *TerminalLayer) Terminals() []*Terminal {
	nodes := tl.layer.All()
	terminals := make([]*Terminal, len(nodes))
	for i, n := range nodes {
		terminals[i] = &Terminal{Node: n}
	}
	return terminals
}

// Words returns only the non-punctuation terminals, in position order
func (tl *TerminalLayer) Words() []*Terminal {
	var words []*Terminal
	for _, t := range tl.Terminals() {
		if !t.Punct() {
			words = append(words, t)
		}
	}
	return words
}

// Len returns the number of terminals
func (tl *TerminalLayer) Len() int { return tl.layer.Len() }

// ByPosition returns the terminal at the given 0-based position
func (tl *TerminalLayer) ByPosition(position int) (*Terminal, bool) {
	id := fmt.Sprintf("%s%s%d", TerminalLayerID, NodeIDSeparator, position)
	n, ok := tl.layer.passage.ByID(id)
	if !ok {
		return nil, false
	}
	return &Terminal{Node: n}, true
}
