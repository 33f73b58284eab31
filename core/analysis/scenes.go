// Package analysis provides annotation-aware text utilities on top of the
// passage model: scene candidate extraction, sentence breaking and
// token-level evaluation.
package analysis

import (
	"github.com/siherrmann/ucca/model"
)

// PossibleScenes extracts units that are candidates for being scenes in
// their own right. A candidate is a participant of a main relation which
// either is a scene itself or has exactly one center and at least one
// elaborator.
func PossibleScenes(p *model.Passage) []*model.FoundationalNode {
	f, ok := model.FoundationalLayerOf(p)
	if !ok {
		return nil
	}
	var candidates []*model.FoundationalNode
	for scene := range f.Scenes() {
		for _, participant := range scene.Participants() {
			if participant.IsScene() ||
				(len(participant.Centers()) == 1 && len(participant.Elaborators()) > 0) {
				candidates = append(candidates, participant)
			}
		}
	}
	return candidates
}
