package convert

import (
	"regexp"
	"strings"

	"github.com/siherrmann/ucca/core/analysis"
	"github.com/siherrmann/ucca/model"
)

var punctPattern = regexp.MustCompile(`^[[:punct:]]+$`)

// FromText builds a terminal-only passage from pre-tokenized text, one
// string per paragraph, tokens separated by whitespace. Annotation layers
// are added on top afterwards. Returns ErrEmptyInput when no tokens remain.
func FromText(paragraphs []string, passageID string) (*model.Passage, error) {
	var tokens []model.Token
	for i, paragraph := range paragraphs {
		for _, text := range strings.Fields(paragraph) {
			tokens = append(tokens, model.Token{
				Text:      text,
				Punct:     punctPattern.MatchString(text),
				Paragraph: i + 1,
			})
		}
	}

	p := model.NewPassage(passageID)
	if _, err := model.BuildTerminals(p, tokens); err != nil {
		return nil, err
	}
	return p, nil
}

// ToText renders the terminals of a passage back to strings. With
// sentences true the output is broken at annotated sentence boundaries,
// otherwise it is a single string.
func ToText(p *model.Passage, sentences bool) []string {
	tl, ok := model.TerminalLayerOf(p)
	if !ok || tl.Len() == 0 {
		return nil
	}
	terminals := tl.Terminals()
	texts := make([]string, len(terminals))
	for i, terminal := range terminals {
		texts[i] = terminal.Text()
	}

	// sentence ends are closing positions, so the next sentence starts
	// one past each of them
	starts := []int{0}
	if sentences {
		for _, end := range analysis.BreakToSentences(p) {
			starts = append(starts, end+1)
		}
	} else {
		starts = append(starts, len(texts))
	}

	var result []string
	for i := 0; i+1 < len(starts); i++ {
		result = append(result, strings.Join(texts[starts[i]:starts[i+1]], " "))
	}
	return result
}
