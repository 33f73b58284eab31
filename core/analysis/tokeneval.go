package analysis

import "strings"

// TokenEvaluation is the outcome of comparing predicted token labels
// against a labeled target list.
type TokenEvaluation struct {
	TruePositive  []string
	TrueNegative  []string
	FalsePositive []string
	FalseNegative []string
	Found         []string
	NotFound      []string
}

// Precision returns TP / (TP + FP), 0 when undefined
func (e TokenEvaluation) Precision() float64 {
	denominator := len(e.TruePositive) + len(e.FalsePositive)
	if denominator == 0 {
		return 0
	}
	return float64(len(e.TruePositive)) / float64(denominator)
}

// Recall returns TP / (TP + FN), 0 when undefined
func (e TokenEvaluation) Recall() float64 {
	denominator := len(e.TruePositive) + len(e.FalseNegative)
	if denominator == 0 {
		return 0
	}
	return float64(len(e.TruePositive)) / float64(denominator)
}

// EvaluateTokens matches each labeled token against the labeled targets
// and splits the matches into true/false positives/negatives. A token that
// misses is retried lowercased when it is title cased; tokens are recorded
// in their original form. Label 1 is positive, 0 negative. Tokens without
// a label default to 0, targets without a label are skipped.
func EvaluateTokens(tokens []string, tokenLabels []int, targets []string, targetLabels []int) TokenEvaluation {
	targetIndex := make(map[string]int, len(targets))
	for i, target := range targets {
		if i >= len(targetLabels) {
			break
		}
		if _, seen := targetIndex[target]; !seen {
			targetIndex[target] = targetLabels[i]
		}
	}

	lookup := func(token string) (int, bool) {
		if label, ok := targetIndex[token]; ok {
			return label, true
		}
		if lowered := strings.ToLower(token); isTitle(token) {
			if label, ok := targetIndex[lowered]; ok {
				return label, true
			}
		}
		return 0, false
	}

	var evaluation TokenEvaluation
	for i, token := range tokens {
		tokenLabel := 0
		if i < len(tokenLabels) {
			tokenLabel = tokenLabels[i]
		}
		targetLabel, ok := lookup(token)
		if !ok {
			evaluation.NotFound = append(evaluation.NotFound, token)
			continue
		}
		evaluation.Found = append(evaluation.Found, token)
		switch {
		case targetLabel == 1 && tokenLabel == 1:
			evaluation.TruePositive = append(evaluation.TruePositive, token)
		case targetLabel == 0 && tokenLabel == 0:
			evaluation.TrueNegative = append(evaluation.TrueNegative, token)
		case tokenLabel == 0:
			evaluation.FalsePositive = append(evaluation.FalsePositive, token)
		default:
			evaluation.FalseNegative = append(evaluation.FalseNegative, token)
		}
	}
	return evaluation
}

// isTitle reports whether the token starts with an upper-case letter
// followed by lower-case letters only
func isTitle(token string) bool {
	if token == "" {
		return false
	}
	return token != strings.ToLower(token) &&
		token[1:] == strings.ToLower(token[1:])
}
