package pipeline

import (
	"strings"

	"github.com/siherrmann/ucca/model"
)

// TokenizeFunc splits raw text into the ordered token sequence of the
// terminal layer. Paragraph numbers start at 1.
type TokenizeFunc func(text string) ([]model.Token, error)

// TagFunc assigns one label per token, "" for tokens without a label
type TagFunc func(tokens []string) ([]string, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// TagKey is the scratch metadata key tags are written to
const TagKey = "postag"

// Pipeline combines tokenizing, tagging and embedding functions
type Pipeline struct {
	Tokenizer TokenizeFunc
	Tagger    TagFunc   // Optional
	Embedder  EmbedFunc // Optional
}

// NewPipeline creates a new processing pipeline
func NewPipeline(tokenizer TokenizeFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Tokenizer: tokenizer,
		Embedder:  embedder,
	}
}

// SetTagger sets the token tagging function
func (p *Pipeline) SetTagger(tagger TagFunc) {
	p.Tagger = tagger
}

// Process tokenizes text into a terminal-only passage ready for
// annotation. When a tagger is set, each terminal gets its label in
// scratch metadata under TagKey.
func (p *Pipeline) Process(text string, passageID string) (*model.Passage, error) {
	tokens, err := p.Tokenizer(text)
	if err != nil {
		return nil, err
	}

	passage := model.NewPassage(passageID)
	tl, err := model.BuildTerminals(passage, tokens)
	if err != nil {
		return nil, err
	}

	if p.Tagger != nil {
		texts := make([]string, len(tokens))
		for i, token := range tokens {
			texts[i] = token.Text
		}
		tags, err := p.Tagger(texts)
		if err != nil {
			return nil, err
		}
		for i, terminal := range tl.Terminals() {
			if i < len(tags) && tags[i] != "" {
				terminal.Extra()[TagKey] = tags[i]
			}
		}
	}

	return passage, nil
}

// ExtractUnits flattens the foundational units of an annotated passage
// into storable rows: node ID, category, terminal yield and span. When an
// embedder is set, each non-empty yield gets an embedding.
func (p *Pipeline) ExtractUnits(passage *model.Passage) ([]*model.Unit, error) {
	f, ok := model.FoundationalLayerOf(passage)
	if !ok {
		return nil, nil
	}

	var units []*model.Unit
	for _, node := range f.FNodes() {
		if node.FTag() == "" {
			// the layer head has no category and spans everything
			continue
		}
		terminals := node.YieldTerminals()
		texts := make([]string, len(terminals))
		for i, terminal := range terminals {
			texts[i] = terminal.Text()
		}
		unit := &model.Unit{
			NodeID:   node.ID(),
			Category: node.FTag(),
			Text:     strings.Join(texts, " "),
			Metadata: model.Metadata{
				"implicit":      node.Implicit(),
				"discontiguous": node.Discontiguous(),
			},
		}
		if len(terminals) > 0 {
			start := node.StartPosition()
			end := node.EndPosition()
			unit.StartPos = &start
			unit.EndPos = &end
		}
		if p.Embedder != nil && unit.Text != "" {
			embedding, err := p.Embedder(unit.Text)
			if err != nil {
				return nil, err
			}
			unit.Embedding = embedding
		}
		units = append(units, unit)
	}
	return units, nil
}
