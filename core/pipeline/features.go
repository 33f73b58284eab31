package pipeline

import (
	"strings"

	"github.com/siherrmann/ucca/model"
)

// ExtractNgrams counts all token ngrams of the given size in the
// sentences, each sentence a token slice. Counts are added on top of
// given, which stays unchanged; keys are the ngram tokens joined by
// spaces.
func ExtractNgrams(size int, sentences [][]string, given map[string]int) map[string]int {
	counts := make(map[string]int, len(given))
	for ngram, count := range given {
		counts[ngram] = count
	}
	if size < 1 {
		return counts
	}
	for _, sentence := range sentences {
		for i := 0; i+size <= len(sentence); i++ {
			counts[strings.Join(sentence[i:i+size], " ")]++
		}
	}
	return counts
}

// UnitFeatures extracts a fixed-shape numeric vector from a unit and its
// terminal yield, usable as classifier input. The shape is independent of
// the unit: yield size, span, flags and child category counts.
func UnitFeatures(node *model.FoundationalNode) []float64 {
	terminals := node.YieldTerminals()
	punct := 0
	for _, terminal := range terminals {
		if terminal.Punct() {
			punct++
		}
	}

	features := []float64{
		float64(len(terminals)),
		float64(node.StartPosition()),
		float64(node.EndPosition()),
		boolFeature(node.Implicit()),
		boolFeature(node.Discontiguous()),
		boolFeature(node.IsScene()),
		float64(punct),
		float64(len(node.Edges(false))),
		float64(len(node.Participants())),
		float64(len(node.Centers())),
		float64(len(node.Elaborators())),
	}
	return features
}

func boolFeature(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
