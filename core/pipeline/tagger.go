package pipeline

import (
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/ucca/helper"
)

// DefaultTaggerModel is the token classification model DefaultTagger uses
const DefaultTaggerModel = "KnightsAnalytics/distilbert-NER"

// DefaultTagger creates a token tagger backed by a hugot token
// classification pipeline. Each token is classified on its own; tokens
// the model has no label for get "".
func DefaultTagger(modelName string) (TagFunc, error) {
	if modelName == "" {
		modelName = DefaultTaggerModel
	}
	// Prepare model (download if needed)
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "tagger-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	taggerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create tagger pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create tagger pipeline: %w", err)
	}

	return func(tokens []string) ([]string, error) {
		if len(tokens) == 0 {
			return nil, nil
		}
		result, err := taggerPipeline.RunPipeline(tokens)
		if err != nil {
			return nil, fmt.Errorf("failed to run tagger: %w", err)
		}

		tags := make([]string, len(tokens))
		for i := range tokens {
			if i >= len(result.Entities) || len(result.Entities[i]) == 0 {
				continue
			}
			tags[i] = normalizeLabel(result.Entities[i][0].Entity)
		}
		return tags, nil
	}, nil
}

// normalizeLabel removes B- and I- prefixes from BIO labels
func normalizeLabel(label string) string {
	if len(label) > 2 && (label[:2] == "B-" || label[:2] == "I-") {
		return label[2:]
	}
	return label
}
