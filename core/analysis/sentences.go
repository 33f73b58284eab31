package analysis

import (
	"sort"

	"github.com/siherrmann/ucca/model"
)

// SentenceEndMarks are the terminal texts that may close a sentence
var SentenceEndMarks = map[string]bool{".": true, "?": true, "!": true}

// BreakToSentences finds sentence boundaries according to the annotation.
// A sentence closes at an end mark that coincides with the end of a top
// parallel scene (or trails one without opening the next), at a paragraph
// end and at the end of the passage. Returns the positions of the closing
// terminals, sorted ascending.
func BreakToSentences(p *model.Passage) []int {
	tl, ok := model.TerminalLayerOf(p)
	if !ok || tl.Len() == 0 {
		return nil
	}
	terminals := tl.Terminals()

	ends := map[int]bool{}
	for _, terminal := range terminals {
		// a terminal opening a new paragraph closes the one before it
		if terminal.Position() != 0 && terminal.ParaPos() == 0 {
			ends[terminal.Position()-1] = true
		}
	}
	ends[terminals[len(terminals)-1].Position()] = true

	sceneEnds := map[int]bool{}
	sceneStarts := map[int]bool{}
	if f, ok := model.FoundationalLayerOf(p); ok {
		for _, scene := range f.TopScenes() {
			sceneEnds[scene.EndPosition()] = true
			sceneStarts[scene.StartPosition()] = true
		}
	}

	// An end mark counts when it closes a top scene itself, or when it
	// hangs right after one without starting the next scene. Annotations
	// do not always include the closing mark inside the scene it ends.
	for _, terminal := range terminals {
		if !SentenceEndMarks[terminal.Text()] {
			continue
		}
		position := terminal.Position()
		if sceneEnds[position] || (sceneEnds[position-1] && !sceneStarts[position]) {
			ends[position] = true
		}
	}

	positions := make([]int, 0, len(ends))
	for position := range ends {
		positions = append(positions, position)
	}
	sort.Ints(positions)
	return positions
}
