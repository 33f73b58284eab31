package model

import (
	"time"

	"github.com/google/uuid"
)

type RetrievalMethod string

const (
	RetrievalMethodVector RetrievalMethod = "vector"
	RetrievalMethodText   RetrievalMethod = "text"
	RetrievalMethodHybrid RetrievalMethod = "hybrid"
)

// PassageRecord is a stored passage: the passage ID together with its
// standard XML serialization and free-form metadata.
type PassageRecord struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	PassageID string    `json:"passage_id"`
	XML       string    `json:"xml,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Results
	Rank float64 `json:"rank,omitempty"`
}

// Unit is a stored foundational unit: one row per annotation unit with
// its terminal yield, category and embedding.
type Unit struct {
	ID         int64     `json:"id"`
	PassageID  int64     `json:"passage_id"`
	PassageRID uuid.UUID `json:"passage_rid"`
	NodeID     string    `json:"node_id"`
	Category   string    `json:"category"`
	Text       string    `json:"text"`
	StartPos   *int      `json:"start_pos,omitempty"`
	EndPos     *int      `json:"end_pos,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Results
	Similarity      float64         `json:"similarity,omitempty"`
	Distance        float64         `json:"distance,omitempty"`
	RetrievalMethod RetrievalMethod `json:"retrieval_method,omitempty"`
}
