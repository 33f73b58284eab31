package model

import "github.com/google/uuid"

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	// Vector search parameters
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`

	// Passage filtering
	PassageRIDs []uuid.UUID `json:"passage_rids,omitempty"` // Filter by specific passages

	// Category filtering
	Categories []string `json:"categories,omitempty"` // Filter by edge categories

	// Ranking parameters
	VectorWeight float64 `json:"vector_weight"` // Weight for similarity score
	TextWeight   float64 `json:"text_weight"`   // Weight for keyword rank
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:                5,
		SimilarityThreshold: 0.7,
		Categories:          nil, // All categories
		VectorWeight:        0.7,
		TextWeight:          0.3,
	}
}
