package convert

import (
	"testing"

	"github.com/siherrmann/ucca/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildAnnotated builds a two-scene passage over "John ate . because Mary
// cooked" with an implicit participant, a remote participant and a linkage.
func buildAnnotated(t *testing.T) *model.Passage {
	t.Helper()
	p := model.NewPassage("42")
	tl, err := model.BuildTerminals(p, []model.Token{
		{Text: "John"}, {Text: "ate"}, {Text: ".", Punct: true},
		{Text: "because"}, {Text: "Mary"}, {Text: "cooked"},
	})
	require.NoError(t, err)
	f, err := model.NewFoundationalLayer(p)
	require.NoError(t, err)

	var scenes [2]*model.FoundationalNode
	var participants [2]*model.FoundationalNode
	for i, positions := range [][2]int{{0, 1}, {4, 5}} {
		scene, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
		require.NoError(t, err)
		participant, err := f.AddFNode(scene, model.EdgeTagParticipant)
		require.NoError(t, err)
		process, err := f.AddFNode(scene, model.EdgeTagProcess)
		require.NoError(t, err)
		subject, _ := tl.ByPosition(positions[0])
		verb, _ := tl.ByPosition(positions[1])
		_, err = f.AddTerminal(participant, subject)
		require.NoError(t, err)
		_, err = f.AddTerminal(process, verb)
		require.NoError(t, err)
		scenes[i] = scene
		participants[i] = participant
	}
	dot, _ := tl.ByPosition(2)
	_, err = f.AddPunct(scenes[0], dot)
	require.NoError(t, err)
	linker, err := f.AddFNode(f.Head(), model.EdgeTagLinker)
	require.NoError(t, err)
	because, _ := tl.ByPosition(3)
	_, err = f.AddTerminal(linker, because)
	require.NoError(t, err)

	_, err = f.AttachImplicit(scenes[1], model.EdgeTagAdverbial)
	require.NoError(t, err)
	_, err = f.AttachRemote(scenes[1], participants[0], model.EdgeTagParticipant)
	require.NoError(t, err)
	_, err = f.CreateLinkage(linker, scenes[0], scenes[1])
	require.NoError(t, err)
	return p
}

func TestStandardRoundTrip(t *testing.T) {
	t.Run("Decoding an encoded passage restores it structurally", func(t *testing.T) {
		p := buildAnnotated(t)

		data, err := ToStandard(p)
		require.NoError(t, err)
		decoded, err := FromStandard(data)
		require.NoError(t, err)

		assert.True(t, p.Equal(decoded), "Round trip must preserve the passage")
	})

	t.Run("Preserves remote flags and implicit attributes", func(t *testing.T) {
		p := buildAnnotated(t)

		data, err := ToStandard(p)
		require.NoError(t, err)
		decoded, err := FromStandard(data)
		require.NoError(t, err)

		f, ok := model.FoundationalLayerOf(decoded)
		require.True(t, ok)
		implicit := 0
		remotes := 0
		for _, node := range f.FNodes() {
			if node.Implicit() {
				implicit++
			}
			for _, edge := range node.Edges(true) {
				if edge.Remote() {
					remotes++
				}
			}
		}
		assert.Equal(t, 1, implicit)
		assert.Equal(t, 1, remotes)
		require.Len(t, f.Linkages(), 1)
		assert.Len(t, f.Linkages()[0].Arguments(), 2)
	})

	t.Run("Round trips a terminal-only passage in token order", func(t *testing.T) {
		p := model.NewPassage("p2")
		_, err := model.BuildTerminals(p, []model.Token{
			{Text: "The"}, {Text: "cat"}, {Text: "sat"}, {Text: ".", Punct: true},
		})
		require.NoError(t, err)

		data, err := ToStandard(p)
		require.NoError(t, err)
		decoded, err := FromStandard(data)
		require.NoError(t, err)

		tl, ok := model.TerminalLayerOf(decoded)
		require.True(t, ok)
		texts := []string{}
		for _, terminal := range tl.Terminals() {
			texts = append(texts, terminal.Text())
		}
		assert.Equal(t, []string{"The", "cat", "sat", "."}, texts)
		dot, ok := tl.ByPosition(3)
		require.True(t, ok)
		assert.True(t, dot.Punct(), "Punctuation flag must survive")
	})

	t.Run("Is independent of scene annotation order", func(t *testing.T) {
		p := model.NewPassage("43")
		tl, err := model.BuildTerminals(p, []model.Token{
			{Text: "John"}, {Text: "ate"}, {Text: "because"},
			{Text: "Mary"}, {Text: "cooked"},
		})
		require.NoError(t, err)
		f, err := model.NewFoundationalLayer(p)
		require.NoError(t, err)

		// The later scene is annotated first.
		var scenes [2]*model.FoundationalNode
		for i, positions := range [][2]int{{3, 4}, {0, 1}} {
			scene, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
			require.NoError(t, err)
			participant, err := f.AddFNode(scene, model.EdgeTagParticipant)
			require.NoError(t, err)
			process, err := f.AddFNode(scene, model.EdgeTagProcess)
			require.NoError(t, err)
			subject, _ := tl.ByPosition(positions[0])
			verb, _ := tl.ByPosition(positions[1])
			_, err = f.AddTerminal(participant, subject)
			require.NoError(t, err)
			_, err = f.AddTerminal(process, verb)
			require.NoError(t, err)
			scenes[i] = scene
		}
		linker, err := f.AddFNode(f.Head(), model.EdgeTagLinker)
		require.NoError(t, err)
		because, _ := tl.ByPosition(2)
		_, err = f.AddTerminal(linker, because)
		require.NoError(t, err)
		_, err = f.CreateLinkage(linker, scenes[1], scenes[0])
		require.NoError(t, err)

		data, err := ToStandard(p)
		require.NoError(t, err)
		decoded, err := FromStandard(data)
		require.NoError(t, err)

		assert.True(t, p.Equal(decoded), "Round trip must preserve the passage")
		df, ok := model.FoundationalLayerOf(decoded)
		require.True(t, ok)
		require.Len(t, df.Linkages(), 1)
		assert.Len(t, df.Linkages()[0].Arguments(), 2)
	})

	t.Run("Terminal attributes survive the round trip", func(t *testing.T) {
		p := buildAnnotated(t)

		data, err := ToStandard(p)
		require.NoError(t, err)
		decoded, err := FromStandard(data)
		require.NoError(t, err)

		tl, ok := model.TerminalLayerOf(decoded)
		require.True(t, ok)
		terminal, ok := tl.ByPosition(4)
		require.True(t, ok)
		assert.Equal(t, "Mary", terminal.Text())
		assert.Equal(t, 1, terminal.Paragraph())
		assert.Equal(t, 4, terminal.ParaPos())
	})
}

func TestFromStandard(t *testing.T) {
	t.Run("Rejects documents that are not well formed", func(t *testing.T) {
		_, err := FromStandard([]byte("<root><layer"))

		require.ErrorIs(t, err, model.ErrMalformedInput)
	})

	t.Run("Rejects documents without a root element", func(t *testing.T) {
		_, err := FromStandard([]byte("<passage/>"))

		require.ErrorIs(t, err, model.ErrMalformedInput)
	})

	t.Run("Rejects edges referencing unknown nodes", func(t *testing.T) {
		data := []byte(`<root passageID="1" annotationID="0"><attributes/>
			<layer layerID="1"><attributes/>
				<node ID="1.1" type="FN"><attributes/>
					<edge toID="1.99" type="H"><attributes/></edge>
				</node>
			</layer>
		</root>`)

		_, err := FromStandard(data)

		require.ErrorIs(t, err, model.ErrMalformedInput)
	})
}

func TestSiteRoundTrip(t *testing.T) {
	p := buildAnnotated(t)

	data, err := ToSite(p)
	require.NoError(t, err)
	decoded, err := FromSite(data)
	require.NoError(t, err)

	t.Run("Preserves the terminal layer", func(t *testing.T) {
		tl, ok := model.TerminalLayerOf(decoded)
		require.True(t, ok)
		require.Equal(t, 6, tl.Len())
		terminal, ok := tl.ByPosition(2)
		require.True(t, ok)
		assert.True(t, terminal.Punct())
		assert.Equal(t, ".", terminal.Text())
	})

	t.Run("Preserves scenes, implicits, remotes and linkages", func(t *testing.T) {
		f, ok := model.FoundationalLayerOf(decoded)
		require.True(t, ok)
		count := 0
		for range f.Scenes() {
			count++
		}
		assert.Equal(t, 2, count)

		implicit := 0
		remotes := 0
		for _, node := range f.FNodes() {
			if node.Implicit() {
				implicit++
			}
			for _, edge := range node.Edges(true) {
				if edge.Remote() {
					remotes++
				}
			}
		}
		assert.Equal(t, 1, implicit)
		assert.Equal(t, 1, remotes)
		require.Len(t, f.Linkages(), 1)
		assert.Len(t, f.Linkages()[0].Arguments(), 2)
	})

	t.Run("Preserves the passage ID", func(t *testing.T) {
		assert.Equal(t, "42", decoded.ID())
	})
}

func TestFromSite(t *testing.T) {
	t.Run("Rejects documents without a units element", func(t *testing.T) {
		_, err := FromSite([]byte("<root/>"))

		require.ErrorIs(t, err, model.ErrMalformedInput)
	})

	t.Run("Rejects unknown unit types", func(t *testing.T) {
		data := []byte(`<root schemeVersion="1.0.3">
			<unitGroups/>
			<units passageID="1">
				<unit type="To Be Defined" id="0">
					<unit type="To Be Defined" id="1">
						<unit type="Nonsense" id="2">
							<unit type="To Be Defined" id="3" unanalyzable="false" uncertain="false">
								<word id="4">hello</word>
							</unit>
						</unit>
					</unit>
				</unit>
			</units>
		</root>`)

		_, err := FromSite(data)

		require.ErrorIs(t, err, model.ErrMalformedInput)
	})
}

func TestFromText(t *testing.T) {
	t.Run("Builds a terminal-only passage from paragraphs", func(t *testing.T) {
		p, err := FromText([]string{"The cat sat .", "It purred !"}, "1")

		require.NoError(t, err)
		tl, ok := model.TerminalLayerOf(p)
		require.True(t, ok)
		require.Equal(t, 7, tl.Len())
		sat, _ := tl.ByPosition(2)
		assert.Equal(t, "sat", sat.Text())
		assert.Equal(t, 1, sat.Paragraph())
		dot, _ := tl.ByPosition(3)
		assert.True(t, dot.Punct())
		it, _ := tl.ByPosition(4)
		assert.Equal(t, 2, it.Paragraph())
		assert.Equal(t, 0, it.ParaPos())
	})

	t.Run("Rejects input without tokens", func(t *testing.T) {
		_, err := FromText([]string{"", "  "}, "1")

		require.ErrorIs(t, err, model.ErrEmptyInput)
	})
}

func TestToText(t *testing.T) {
	t.Run("Joins all terminals without sentence breaking", func(t *testing.T) {
		p, err := FromText([]string{"The cat sat ."}, "1")
		require.NoError(t, err)

		assert.Equal(t, []string{"The cat sat ."}, ToText(p, false))
	})

	t.Run("Breaks at paragraph boundaries", func(t *testing.T) {
		p, err := FromText([]string{"The cat sat .", "It purred ."}, "1")
		require.NoError(t, err)

		assert.Equal(t, []string{"The cat sat .", "It purred ."}, ToText(p, true))
	})

	t.Run("Round trips tokenized text", func(t *testing.T) {
		paragraphs := []string{"John ate . because Mary cooked"}
		p, err := FromText(paragraphs, "1")
		require.NoError(t, err)

		assert.Equal(t, paragraphs, ToText(p, false))
	})
}
