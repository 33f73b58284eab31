package pipeline

import (
	"testing"

	"github.com/siherrmann/ucca/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTokenizer(t *testing.T) {
	tokenizer := DefaultTokenizer()

	t.Run("Splits tokens on whitespace and marks punctuation", func(t *testing.T) {
		tokens, err := tokenizer("The cat sat .")

		require.NoError(t, err)
		require.Len(t, tokens, 4)
		assert.Equal(t, "cat", tokens[1].Text)
		assert.False(t, tokens[1].Punct)
		assert.True(t, tokens[3].Punct)
		assert.Equal(t, 1, tokens[0].Paragraph)
	})

	t.Run("Separates paragraphs on blank lines", func(t *testing.T) {
		tokens, err := tokenizer("Hello world\n\nBye now")

		require.NoError(t, err)
		require.Len(t, tokens, 4)
		assert.Equal(t, 1, tokens[1].Paragraph)
		assert.Equal(t, 2, tokens[2].Paragraph)
	})

	t.Run("Rejects empty text", func(t *testing.T) {
		_, err := tokenizer("  \n\n  ")

		require.ErrorIs(t, err, model.ErrEmptyInput)
	})
}

func TestProcess(t *testing.T) {
	t.Run("Builds a terminal-only passage", func(t *testing.T) {
		p := NewPipeline(DefaultTokenizer(), nil)

		passage, err := p.Process("The cat sat .", "p1")

		require.NoError(t, err)
		assert.Equal(t, "p1", passage.ID())
		tl, ok := model.TerminalLayerOf(passage)
		require.True(t, ok)
		assert.Equal(t, 4, tl.Len())
	})

	t.Run("Writes tags into terminal scratch metadata", func(t *testing.T) {
		p := NewPipeline(DefaultTokenizer(), nil)
		p.SetTagger(func(tokens []string) ([]string, error) {
			tags := make([]string, len(tokens))
			for i, token := range tokens {
				if token == "cat" {
					tags[i] = "NOUN"
				}
			}
			return tags, nil
		})

		passage, err := p.Process("The cat sat .", "p1")

		require.NoError(t, err)
		tl, _ := model.TerminalLayerOf(passage)
		cat, _ := tl.ByPosition(1)
		the, _ := tl.ByPosition(0)
		assert.Equal(t, "NOUN", cat.Extra()[TagKey])
		assert.NotContains(t, the.Extra(), TagKey)
	})
}

func TestExtractUnits(t *testing.T) {
	// "The cat sat" with a participant and a process under one scene
	buildAnnotated := func(t *testing.T) *model.Passage {
		t.Helper()
		passage := model.NewPassage("p1")
		tl, err := model.BuildTerminals(passage, []model.Token{
			{Text: "The"}, {Text: "cat"}, {Text: "sat"},
		})
		require.NoError(t, err)
		f, err := model.NewFoundationalLayer(passage)
		require.NoError(t, err)
		scene, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
		require.NoError(t, err)
		participant, err := f.AddFNode(scene, model.EdgeTagParticipant)
		require.NoError(t, err)
		process, err := f.AddFNode(scene, model.EdgeTagProcess)
		require.NoError(t, err)
		for position, parent := range map[int]*model.FoundationalNode{
			0: participant, 1: participant, 2: process,
		} {
			terminal, _ := tl.ByPosition(position)
			_, err = f.AddTerminal(parent, terminal)
			require.NoError(t, err)
		}
		_, err = f.AttachImplicit(scene, model.EdgeTagAdverbial)
		require.NoError(t, err)
		return passage
	}

	t.Run("Creates one row per categorized unit", func(t *testing.T) {
		p := NewPipeline(DefaultTokenizer(), nil)

		units, err := p.ExtractUnits(buildAnnotated(t))

		require.NoError(t, err)
		require.Len(t, units, 4, "Scene, participant, process and implicit unit")
		byCategory := map[string]*model.Unit{}
		for _, unit := range units {
			byCategory[unit.Category] = unit
		}
		assert.Equal(t, "The cat sat", byCategory[model.EdgeTagParallelScene].Text)
		assert.Equal(t, "The cat", byCategory[model.EdgeTagParticipant].Text)
		require.NotNil(t, byCategory[model.EdgeTagParticipant].StartPos)
		assert.Equal(t, 0, *byCategory[model.EdgeTagParticipant].StartPos)
		assert.Equal(t, 1, *byCategory[model.EdgeTagParticipant].EndPos)
	})

	t.Run("Leaves implicit units without text, span and embedding", func(t *testing.T) {
		p := NewPipeline(DefaultTokenizer(), func(text string) ([]float32, error) {
			return []float32{1, 2, 3}, nil
		})

		units, err := p.ExtractUnits(buildAnnotated(t))

		require.NoError(t, err)
		var implicit *model.Unit
		for _, unit := range units {
			if unit.Category == model.EdgeTagAdverbial {
				implicit = unit
			}
		}
		require.NotNil(t, implicit)
		assert.Empty(t, implicit.Text)
		assert.Nil(t, implicit.StartPos)
		assert.Nil(t, implicit.Embedding)
		assert.Equal(t, true, implicit.Metadata["implicit"])
	})

	t.Run("Embeds units with text when an embedder is set", func(t *testing.T) {
		p := NewPipeline(DefaultTokenizer(), func(text string) ([]float32, error) {
			return []float32{float32(len(text))}, nil
		})

		units, err := p.ExtractUnits(buildAnnotated(t))

		require.NoError(t, err)
		for _, unit := range units {
			if unit.Text != "" {
				assert.NotEmpty(t, unit.Embedding)
			}
		}
	})

	t.Run("Returns nothing for unannotated passages", func(t *testing.T) {
		p := NewPipeline(DefaultTokenizer(), nil)
		passage, err := p.Process("Hello world", "p1")
		require.NoError(t, err)

		units, err := p.ExtractUnits(passage)

		require.NoError(t, err)
		assert.Empty(t, units)
	})
}

func TestExtractNgrams(t *testing.T) {
	t.Run("Counts ngrams across sentences", func(t *testing.T) {
		counts := ExtractNgrams(2, [][]string{
			{"the", "cat", "sat"},
			{"the", "cat", "ran"},
		}, nil)

		assert.Equal(t, 2, counts["the cat"])
		assert.Equal(t, 1, counts["cat sat"])
		assert.NotContains(t, counts, "sat the", "Ngrams must not cross sentences")
	})

	t.Run("Adds on top of previous counts without changing them", func(t *testing.T) {
		given := map[string]int{"the cat": 5}

		counts := ExtractNgrams(2, [][]string{{"the", "cat"}}, given)

		assert.Equal(t, 6, counts["the cat"])
		assert.Equal(t, 5, given["the cat"], "Given counts must stay unchanged")
	})

	t.Run("Skips sentences shorter than the ngram size", func(t *testing.T) {
		counts := ExtractNgrams(3, [][]string{{"too", "short"}}, nil)

		assert.Empty(t, counts)
	})
}

func TestUnitFeatures(t *testing.T) {
	passage := model.NewPassage("p1")
	tl, err := model.BuildTerminals(passage, []model.Token{
		{Text: "The"}, {Text: "cat"}, {Text: "sat"}, {Text: ".", Punct: true},
	})
	require.NoError(t, err)
	f, err := model.NewFoundationalLayer(passage)
	require.NoError(t, err)
	scene, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
	require.NoError(t, err)
	participant, err := f.AddFNode(scene, model.EdgeTagParticipant)
	require.NoError(t, err)
	process, err := f.AddFNode(scene, model.EdgeTagProcess)
	require.NoError(t, err)
	for position, parent := range map[int]*model.FoundationalNode{
		0: participant, 1: participant, 2: process,
	} {
		terminal, _ := tl.ByPosition(position)
		_, err = f.AddTerminal(parent, terminal)
		require.NoError(t, err)
	}
	dot, _ := tl.ByPosition(3)
	_, err = f.AddPunct(scene, dot)
	require.NoError(t, err)

	t.Run("Has a fixed shape regardless of the unit", func(t *testing.T) {
		assert.Len(t, UnitFeatures(scene), len(UnitFeatures(participant)))
	})

	t.Run("Encodes yield, span and structure", func(t *testing.T) {
		features := UnitFeatures(scene)

		assert.Equal(t, 4.0, features[0], "Yield size")
		assert.Equal(t, 0.0, features[1], "Start position")
		assert.Equal(t, 3.0, features[2], "End position")
		assert.Equal(t, 1.0, features[5], "Scene flag")
		assert.Equal(t, 1.0, features[6], "Punctuation count")
	})
}
