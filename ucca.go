package ucca

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/ucca/core/convert"
	"github.com/siherrmann/ucca/core/pipeline"
	"github.com/siherrmann/ucca/core/search"
	"github.com/siherrmann/ucca/database"
	"github.com/siherrmann/ucca/helper"
	"github.com/siherrmann/ucca/model"
	loadSql "github.com/siherrmann/ucca/sql"
)

// Corpus provides a unified interface to passage storage and retrieval
type Corpus struct {
	DB       *helper.Database
	Passages *database.PassagesDBHandler
	Units    *database.UnitsDBHandler
	Pipeline *pipeline.Pipeline // Optional tokenization/embedding pipeline
	Engine   *search.Engine     // Retrieval engine over stored units
	// Logging
	log *slog.Logger
}

// NewCorpus creates a new Corpus instance with all handlers initialized
func NewCorpus(config *helper.DatabaseConfiguration, embeddingDim int) (*Corpus, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("ucca", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create handlers in the correct order (passages first, then units)
	// force=false to not reload if functions already exist
	passages, err := database.NewPassagesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create passages handler", err)
	}

	units, err := database.NewUnitsDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create units handler", err)
	}

	// Create retrieval engine with database handlers
	engine := search.NewEngine(passages, units)

	return &Corpus{
		DB:       db,
		Passages: passages,
		Units:    units,
		Engine:   engine,
		log:      logger,
	}, nil
}

// Close closes the database connection
func (c *Corpus) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the tokenization pipeline for passage processing
func (c *Corpus) SetPipeline(pipeline *pipeline.Pipeline) {
	c.Pipeline = pipeline
}

// UseDefaultPipeline sets up the default tokenization and embedding pipeline.
// This uses DefaultTokenizer for paragraph and token splitting,
// and DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions).
func (c *Corpus) UseDefaultPipeline() error {
	tokenizer := pipeline.DefaultTokenizer()
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	c.Pipeline = pipeline.NewPipeline(tokenizer, embedder)
	return nil
}

// InsertPassage serializes an annotated passage to standard XML,
// inserts the record and stores one unit row per annotation unit.
// Returns the number of units inserted and any error encountered.
func (c *Corpus) InsertPassage(p *model.Passage, metadata model.Metadata) (*model.PassageRecord, int, error) {
	data, err := convert.ToStandard(p)
	if err != nil {
		return nil, 0, helper.NewError("serialize passage", err)
	}

	record := &model.PassageRecord{
		PassageID: p.ID(),
		XML:       string(data),
		Metadata:  metadata,
	}
	if err := c.Passages.InsertPassage(record); err != nil {
		return nil, 0, helper.NewError("insert passage", err)
	}

	c.log.Info("Inserted passage", slog.String("passage_rid", record.RID.String()), slog.String("passage_id", record.PassageID))

	// Extract and insert annotation units
	var units []*model.Unit
	if c.Pipeline != nil {
		units, err = c.Pipeline.ExtractUnits(p)
	} else {
		units, err = pipeline.NewPipeline(nil, nil).ExtractUnits(p)
	}
	if err != nil {
		return record, 0, helper.NewError("extract units", err)
	}

	for i, unit := range units {
		unit.PassageRID = record.RID
		if err := c.Units.InsertUnit(unit); err != nil {
			return record, i, helper.NewError(fmt.Sprintf("insert unit %d", i), err)
		}
	}

	return record, len(units), nil
}

// ProcessAndInsertPassage tokenizes raw text into a terminal-only passage
// using the pipeline and inserts it.
// Returns the stored record, the built passage and any error encountered.
func (c *Corpus) ProcessAndInsertPassage(text string, passageID string, metadata model.Metadata) (*model.PassageRecord, *model.Passage, error) {
	if c.Pipeline == nil {
		return nil, nil, helper.NewError("process passage", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	if text == "" {
		return nil, nil, helper.NewError("process passage", fmt.Errorf("passage text is empty"))
	}

	p, err := c.Pipeline.Process(text, passageID)
	if err != nil {
		return nil, nil, helper.NewError("process passage", err)
	}

	record, _, err := c.InsertPassage(p, metadata)
	if err != nil {
		return nil, nil, err
	}

	return record, p, nil
}

// LoadPassage retrieves a stored record and decodes it back into a passage
func (c *Corpus) LoadPassage(rid uuid.UUID) (*model.Passage, error) {
	record, err := c.Passages.SelectPassage(rid)
	if err != nil {
		return nil, helper.NewError("select passage", err)
	}

	p, err := convert.FromStandard([]byte(record.XML))
	if err != nil {
		return nil, helper.NewError("decode passage", err)
	}

	return p, nil
}

// SearchUnits performs vector similarity search over stored units
func (c *Corpus) SearchUnits(ctx context.Context, query string, config *model.QueryConfig) ([]*model.Unit, error) {
	if c.Engine == nil {
		return nil, helper.NewError("vector search", fmt.Errorf("retrieval engine not initialized"))
	}
	if c.Pipeline == nil || c.Pipeline.Embedder == nil {
		return nil, helper.NewError("vector search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	// Generate embedding from query
	embedding, err := c.Pipeline.Embedder(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	return c.Engine.VectorRetrieve(ctx, embedding, config)
}

// HybridSearchUnits combines vector and keyword retrieval over stored units
func (c *Corpus) HybridSearchUnits(ctx context.Context, query string, config *model.QueryConfig) ([]*model.Unit, error) {
	if c.Pipeline == nil || c.Pipeline.Embedder == nil {
		return nil, helper.NewError("hybrid search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	// Generate embedding from query
	embedding, err := c.Pipeline.Embedder(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	return c.Engine.HybridRetrieve(ctx, embedding, query, config)
}

// SearchPassages performs keyword search over stored passages
func (c *Corpus) SearchPassages(ctx context.Context, query string, limit int) ([]*model.PassageRecord, error) {
	return c.Engine.SearchPassages(ctx, query, limit)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (c *Corpus) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return c.Units.ChangeIndexType(ctx, indexType, params)
}
