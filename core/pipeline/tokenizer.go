package pipeline

import (
	"regexp"
	"strings"

	"github.com/siherrmann/ucca/model"
)

var punctToken = regexp.MustCompile(`^[[:punct:]]+$`)

// DefaultTokenizer returns a whitespace tokenizer. Blank lines separate
// paragraphs, tokens consisting only of punctuation characters are marked
// as punctuation. Input is expected pre-tokenized, it is split on
// whitespace only.
func DefaultTokenizer() TokenizeFunc {
	return func(text string) ([]model.Token, error) {
		var tokens []model.Token
		paragraph := 0
		for _, block := range strings.Split(text, "\n\n") {
			if strings.TrimSpace(block) == "" {
				continue
			}
			paragraph++
			for _, field := range strings.Fields(block) {
				tokens = append(tokens, model.Token{
					Text:      field,
					Punct:     punctToken.MatchString(field),
					Paragraph: paragraph,
				})
			}
		}
		if len(tokens) == 0 {
			return nil, model.ErrEmptyInput
		}
		return tokens, nil
	}
}
