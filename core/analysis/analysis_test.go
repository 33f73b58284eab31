package analysis

import (
	"testing"

	"github.com/siherrmann/ucca/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildScene adds a scene over the given subject and verb positions, with
// the subject wrapped in a participant unit.
func buildScene(t *testing.T, f *model.FoundationalLayer, tl *model.TerminalLayer, subject, verb int) (*model.FoundationalNode, *model.FoundationalNode) {
	t.Helper()
	scene, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
	require.NoError(t, err)
	participant, err := f.AddFNode(scene, model.EdgeTagParticipant)
	require.NoError(t, err)
	process, err := f.AddFNode(scene, model.EdgeTagProcess)
	require.NoError(t, err)
	subjectTerminal, _ := tl.ByPosition(subject)
	verbTerminal, _ := tl.ByPosition(verb)
	_, err = f.AddTerminal(participant, subjectTerminal)
	require.NoError(t, err)
	_, err = f.AddTerminal(process, verbTerminal)
	require.NoError(t, err)
	return scene, participant
}

func TestPossibleScenes(t *testing.T) {
	t.Run("Finds participants with one center and elaborators", func(t *testing.T) {
		p := model.NewPassage("p1")
		tl, err := model.BuildTerminals(p, []model.Token{
			{Text: "The"}, {Text: "old"}, {Text: "dog"}, {Text: "barked"},
		})
		require.NoError(t, err)
		f, err := model.NewFoundationalLayer(p)
		require.NoError(t, err)
		scene, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
		require.NoError(t, err)
		participant, err := f.AddFNode(scene, model.EdgeTagParticipant)
		require.NoError(t, err)
		process, err := f.AddFNode(scene, model.EdgeTagProcess)
		require.NoError(t, err)
		center, err := f.AddFNode(participant, model.EdgeTagCenter)
		require.NoError(t, err)
		elaborator, err := f.AddFNode(participant, model.EdgeTagElaborator)
		require.NoError(t, err)
		function, err := f.AddFNode(participant, model.EdgeTagFunction)
		require.NoError(t, err)
		for position, parent := range map[int]*model.FoundationalNode{
			0: function, 1: elaborator, 2: center, 3: process,
		} {
			terminal, _ := tl.ByPosition(position)
			_, err = f.AddTerminal(parent, terminal)
			require.NoError(t, err)
		}

		candidates := PossibleScenes(p)

		require.Len(t, candidates, 1)
		assert.Equal(t, participant.ID(), candidates[0].ID())
	})

	t.Run("Finds participants that are scenes themselves", func(t *testing.T) {
		p := model.NewPassage("p1")
		tl, err := model.BuildTerminals(p, []model.Token{
			{Text: "John"}, {Text: "saw"}, {Text: "Mary"}, {Text: "running"},
		})
		require.NoError(t, err)
		f, err := model.NewFoundationalLayer(p)
		require.NoError(t, err)
		scene, participant := buildScene(t, f, tl, 0, 1)
		inner, err := f.AddFNode(scene, model.EdgeTagParticipant)
		require.NoError(t, err)
		innerParticipant, err := f.AddFNode(inner, model.EdgeTagParticipant)
		require.NoError(t, err)
		innerProcess, err := f.AddFNode(inner, model.EdgeTagProcess)
		require.NoError(t, err)
		mary, _ := tl.ByPosition(2)
		running, _ := tl.ByPosition(3)
		_, err = f.AddTerminal(innerParticipant, mary)
		require.NoError(t, err)
		_, err = f.AddTerminal(innerProcess, running)
		require.NoError(t, err)

		candidates := PossibleScenes(p)

		ids := make([]string, len(candidates))
		for i, candidate := range candidates {
			ids[i] = candidate.ID()
		}
		assert.Contains(t, ids, inner.ID())
		assert.NotContains(t, ids, participant.ID(), "Plain participants are not candidates")
	})

	t.Run("Returns nothing without a foundational layer", func(t *testing.T) {
		p := model.NewPassage("p1")

		assert.Empty(t, PossibleScenes(p))
	})
}

func TestBreakToSentences(t *testing.T) {
	t.Run("Breaks at scene-closing end marks", func(t *testing.T) {
		p := model.NewPassage("p1")
		tl, err := model.BuildTerminals(p, []model.Token{
			{Text: "John"}, {Text: "ate"}, {Text: ".", Punct: true},
			{Text: "Mary"}, {Text: "slept"}, {Text: ".", Punct: true},
		})
		require.NoError(t, err)
		f, err := model.NewFoundationalLayer(p)
		require.NoError(t, err)
		first, _ := buildScene(t, f, tl, 0, 1)
		second, _ := buildScene(t, f, tl, 3, 4)
		dot1, _ := tl.ByPosition(2)
		dot2, _ := tl.ByPosition(5)
		_, err = f.AddPunct(first, dot1)
		require.NoError(t, err)
		_, err = f.AddPunct(second, dot2)
		require.NoError(t, err)

		assert.Equal(t, []int{2, 5}, BreakToSentences(p))
	})

	t.Run("Counts marks hanging right after a scene end", func(t *testing.T) {
		p := model.NewPassage("p1")
		tl, err := model.BuildTerminals(p, []model.Token{
			{Text: "John"}, {Text: "ate"}, {Text: ".", Punct: true},
			{Text: "Mary"}, {Text: "slept"},
		})
		require.NoError(t, err)
		f, err := model.NewFoundationalLayer(p)
		require.NoError(t, err)
		first, _ := buildScene(t, f, tl, 0, 1)
		buildScene(t, f, tl, 3, 4)
		dot, _ := tl.ByPosition(2)
		// the mark is attached to the head, not inside the scene it closes
		_, err = f.AddPunct(f.Head(), dot)
		require.NoError(t, err)
		_ = first

		assert.Equal(t, []int{2, 4}, BreakToSentences(p))
	})

	t.Run("Breaks at paragraph ends without annotation", func(t *testing.T) {
		p := model.NewPassage("p1")
		_, err := model.BuildTerminals(p, []model.Token{
			{Text: "Hello", Paragraph: 1}, {Text: "world", Paragraph: 1},
			{Text: "Bye", Paragraph: 2},
		})
		require.NoError(t, err)

		assert.Equal(t, []int{1, 2}, BreakToSentences(p))
	})

	t.Run("Returns nothing for a passage without terminals", func(t *testing.T) {
		assert.Empty(t, BreakToSentences(model.NewPassage("p1")))
	})
}

func TestEvaluateTokens(t *testing.T) {
	t.Run("Splits matches into the four outcome classes", func(t *testing.T) {
		targets := []string{"cat", "dog", "bird", "fish"}
		targetLabels := []int{1, 0, 1, 0}

		evaluation := EvaluateTokens(
			[]string{"cat", "dog", "bird", "fish", "cow"},
			[]int{1, 0, 0, 1, 1},
			targets, targetLabels,
		)

		assert.Equal(t, []string{"cat"}, evaluation.TruePositive)
		assert.Equal(t, []string{"dog"}, evaluation.TrueNegative)
		assert.Equal(t, []string{"bird"}, evaluation.FalsePositive)
		assert.Equal(t, []string{"fish"}, evaluation.FalseNegative)
		assert.Equal(t, []string{"cow"}, evaluation.NotFound)
		assert.Len(t, evaluation.Found, 4)
	})

	t.Run("Falls back to lowercase for title-cased tokens", func(t *testing.T) {
		evaluation := EvaluateTokens(
			[]string{"Cat", "CAT"},
			[]int{1, 1},
			[]string{"cat"}, []int{1},
		)

		assert.Equal(t, []string{"Cat"}, evaluation.TruePositive, "Title case should match lowercased")
		assert.Equal(t, []string{"CAT"}, evaluation.NotFound, "All caps is not title case")
	})

	t.Run("Computes precision and recall", func(t *testing.T) {
		evaluation := TokenEvaluation{
			TruePositive:  []string{"a", "b"},
			FalsePositive: []string{"c"},
			FalseNegative: []string{"d"},
		}

		assert.InDelta(t, 2.0/3.0, evaluation.Precision(), 1e-9)
		assert.InDelta(t, 2.0/3.0, evaluation.Recall(), 1e-9)
	})

	t.Run("Handles empty input", func(t *testing.T) {
		evaluation := EvaluateTokens(nil, nil, nil, nil)

		assert.Empty(t, evaluation.Found)
		assert.Zero(t, evaluation.Precision())
	})
}
