package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTerminals(t *testing.T) {
	t.Run("Assigns zero-based positions in input order", func(t *testing.T) {
		p := NewPassage("p1")

		tl, err := BuildTerminals(p, []Token{
			{Text: "The"}, {Text: "cat"}, {Text: "sat"}, {Text: ".", Punct: true},
		})

		require.NoError(t, err)
		terminals := tl.Terminals()
		require.Len(t, terminals, 4)
		for i, expected := range []string{"The", "cat", "sat", "."} {
			assert.Equal(t, expected, terminals[i].Text())
			assert.Equal(t, i, terminals[i].Position())
		}
		assert.False(t, terminals[2].Punct())
		assert.True(t, terminals[3].Punct())
		assert.Len(t, tl.Words(), 3, "Words should exclude punctuation")
	})

	t.Run("Rejects empty input", func(t *testing.T) {
		p := NewPassage("p1")

		tl, err := BuildTerminals(p, nil)

		require.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, tl)
	})

	t.Run("Rejects a second terminal layer", func(t *testing.T) {
		p := NewPassage("p1")
		_, err := BuildTerminals(p, []Token{{Text: "one"}})
		require.NoError(t, err)

		_, err = BuildTerminals(p, []Token{{Text: "two"}})

		require.ErrorIs(t, err, ErrDuplicateLayer)
	})

	t.Run("Resets paragraph positions at paragraph breaks", func(t *testing.T) {
		p := NewPassage("p1")

		tl, err := BuildTerminals(p, []Token{
			{Text: "Hello", Paragraph: 1},
			{Text: "world", Paragraph: 1},
			{Text: "Bye", Paragraph: 2},
			{Text: "now", Paragraph: 2},
		})

		require.NoError(t, err)
		terminals := tl.Terminals()
		assert.Equal(t, []int{1, 1, 2, 2}, []int{
			terminals[0].Paragraph(), terminals[1].Paragraph(),
			terminals[2].Paragraph(), terminals[3].Paragraph(),
		})
		assert.Equal(t, []int{0, 1, 0, 1}, []int{
			terminals[0].ParaPos(), terminals[1].ParaPos(),
			terminals[2].ParaPos(), terminals[3].ParaPos(),
		})
	})

	t.Run("Defaults missing paragraph numbers to one", func(t *testing.T) {
		p := NewPassage("p1")

		tl, err := BuildTerminals(p, []Token{{Text: "word"}})

		require.NoError(t, err)
		assert.Equal(t, 1, tl.Terminals()[0].Paragraph())
	})
}

func TestTerminalLayerByPosition(t *testing.T) {
	p := NewPassage("p1")
	tl, err := BuildTerminals(p, []Token{{Text: "a"}, {Text: "b"}})
	require.NoError(t, err)

	t.Run("Finds a terminal by position", func(t *testing.T) {
		terminal, ok := tl.ByPosition(1)

		require.True(t, ok)
		assert.Equal(t, "b", terminal.Text())
	})

	t.Run("Reports missing positions", func(t *testing.T) {
		_, ok := tl.ByPosition(2)

		assert.False(t, ok)
	})
}
