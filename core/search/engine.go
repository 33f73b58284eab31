package search

import (
	"context"
	"sort"

	"github.com/siherrmann/ucca/database"
	"github.com/siherrmann/ucca/model"
)

// Engine provides vector, keyword and hybrid retrieval over a stored corpus
type Engine struct {
	passages *database.PassagesDBHandler
	units    *database.UnitsDBHandler
}

// NewEngine creates a new retrieval engine
func NewEngine(passages *database.PassagesDBHandler, units *database.UnitsDBHandler) *Engine {
	return &Engine{
		passages: passages,
		units:    units,
	}
}

// VectorRetrieve performs pure vector similarity search over units
func (e *Engine) VectorRetrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]*model.Unit, error) {
	units, err := e.units.SelectUnitsBySimilarity(embedding, config.TopK, config.SimilarityThreshold, config.PassageRIDs)
	if err != nil {
		return nil, err
	}

	return filterByCategory(units, config.Categories), nil
}

// TextRetrieve performs keyword search over unit yields
func (e *Engine) TextRetrieve(ctx context.Context, searchTerm string, config *model.QueryConfig) ([]*model.Unit, error) {
	units, err := e.units.SearchUnits(searchTerm, config.TopK)
	if err != nil {
		return nil, err
	}

	return filterByCategory(units, config.Categories), nil
}

// HybridRetrieve combines vector and keyword retrieval.
// Units found by both methods are boosted with the combined weights.
func (e *Engine) HybridRetrieve(ctx context.Context, embedding []float32, searchTerm string, config *model.QueryConfig) ([]*model.Unit, error) {
	vectorUnits, err := e.VectorRetrieve(ctx, embedding, config)
	if err != nil {
		return nil, err
	}

	textUnits, err := e.TextRetrieve(ctx, searchTerm, config)
	if err != nil {
		return nil, err
	}

	resultMap := make(map[int64]*model.Unit)
	scores := make(map[int64]float64)

	for _, unit := range vectorUnits {
		resultMap[unit.ID] = unit
		scores[unit.ID] = config.VectorWeight * unit.Similarity
	}

	for _, unit := range textUnits {
		if existing, exists := resultMap[unit.ID]; exists {
			existing.RetrievalMethod = model.RetrievalMethodHybrid
			scores[unit.ID] += config.TextWeight
		} else {
			resultMap[unit.ID] = unit
			scores[unit.ID] = config.TextWeight
		}
	}

	results := make([]*model.Unit, 0, len(resultMap))
	for _, unit := range resultMap {
		results = append(results, unit)
	}

	sort.Slice(results, func(i, j int) bool {
		if scores[results[i].ID] != scores[results[j].ID] {
			return scores[results[i].ID] > scores[results[j].ID]
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > config.TopK {
		results = results[:config.TopK]
	}

	return results, nil
}

// SearchPassages performs keyword search over stored passage XML
func (e *Engine) SearchPassages(ctx context.Context, searchTerm string, limit int) ([]*model.PassageRecord, error) {
	return e.passages.SearchPassages(searchTerm, limit)
}

func filterByCategory(units []*model.Unit, categories []string) []*model.Unit {
	if len(categories) == 0 {
		return units
	}

	var filtered []*model.Unit
	for _, unit := range units {
		for _, category := range categories {
			if unit.Category == category {
				filtered = append(filtered, unit)
				break
			}
		}
	}

	return filtered
}
