package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/ucca/helper"
	"github.com/siherrmann/ucca/model"
	loadSql "github.com/siherrmann/ucca/sql"
)

// UnitsDBHandlerFunctions defines the interface for Units database operations.
type UnitsDBHandlerFunctions interface {
	InsertUnit(unit *model.Unit) error
	SelectUnit(id int64) (*model.Unit, error)
	SelectUnitsByPassage(passageRID uuid.UUID) ([]*model.Unit, error)
	SelectUnitsByCategory(category string, limit int) ([]*model.Unit, error)
	SelectUnitsBySimilarity(embedding []float32, limit int, threshold float64, passageRIDs []uuid.UUID) ([]*model.Unit, error)
	SearchUnits(searchTerm string, limit int) ([]*model.Unit, error)
	UpdateUnitEmbedding(id int64, embedding []float32) error
	DeleteUnit(id int64) error
}

// UnitsDBHandler handles unit-related database operations
type UnitsDBHandler struct {
	db *helper.Database
}

// NewUnitsDBHandler creates a new units database handler.
// It initializes the database connection and loads unit-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewUnitsDBHandler(db *helper.Database, embeddingDim int, force bool) (*UnitsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	unitsDbHandler := &UnitsDBHandler{
		db: db,
	}

	err := loadSql.LoadUnitsSql(unitsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load units sql", err)
	}

	err = unitsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized UnitsDBHandler")

	return unitsDbHandler, nil
}

// CreateTable creates the 'units' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *UnitsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_units($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing units table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table units")

	return nil
}

// InsertUnit inserts a new unit
func (h *UnitsDBHandler) InsertUnit(unit *model.Unit) error {
	var embeddingParam interface{}
	if len(unit.Embedding) > 0 {
		embeddingParam = pq.Array(unit.Embedding)
	} else {
		embeddingParam = nil
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_unit($1, $2, $3, $4, $5, $6, $7, $8)`,
		unit.PassageRID,
		unit.NodeID,
		unit.Category,
		unit.Text,
		embeddingParam,
		unit.StartPos,
		unit.EndPos,
		unit.Metadata,
	)

	err := row.Scan(
		&unit.ID,
		&unit.PassageID,
		&unit.PassageRID,
		&unit.NodeID,
		&unit.Category,
		&unit.Text,
		&unit.StartPos,
		&unit.EndPos,
		&unit.Metadata,
		&unit.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectUnit retrieves a unit by ID
func (h *UnitsDBHandler) SelectUnit(id int64) (*model.Unit, error) {
	unit := &model.Unit{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_unit($1)`,
		id,
	)

	err := row.Scan(
		&unit.ID,
		&unit.PassageID,
		&unit.PassageRID,
		&unit.NodeID,
		&unit.Category,
		&unit.Text,
		&unit.StartPos,
		&unit.EndPos,
		&unit.Metadata,
		&unit.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return unit, nil
}

// SelectUnitsByPassage retrieves all units for a passage
func (h *UnitsDBHandler) SelectUnitsByPassage(passageRID uuid.UUID) ([]*model.Unit, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_units_by_passage($1)`,
		passageRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanUnits(rows, "")
}

// SelectUnitsByCategory retrieves units with the given edge category
func (h *UnitsDBHandler) SelectUnitsByCategory(category string, limit int) ([]*model.Unit, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_units_by_category($1, $2)`,
		category,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanUnits(rows, "")
}

// SelectUnitsBySimilarity retrieves units ordered by cosine similarity
// to the given embedding. An empty passageRIDs slice matches all passages.
func (h *UnitsDBHandler) SelectUnitsBySimilarity(embedding []float32, limit int, threshold float64, passageRIDs []uuid.UUID) ([]*model.Unit, error) {
	embeddingVector := pgvector.NewVector(embedding)

	// Convert passageRIDs to PostgreSQL UUID array format
	var passageRIDsParam interface{}
	if len(passageRIDs) > 0 {
		passageRIDsParam = pq.Array(passageRIDs)
	} else {
		passageRIDsParam = nil
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_units_by_similarity($1, $2, $3, $4)`,
		embeddingVector,
		limit,
		threshold,
		passageRIDsParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var units []*model.Unit
	for rows.Next() {
		unit := &model.Unit{}
		err := rows.Scan(
			&unit.ID,
			&unit.PassageID,
			&unit.PassageRID,
			&unit.NodeID,
			&unit.Category,
			&unit.Text,
			&unit.StartPos,
			&unit.EndPos,
			&unit.Metadata,
			&unit.CreatedAt,
			&unit.Similarity,
			&unit.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		unit.RetrievalMethod = model.RetrievalMethodVector
		units = append(units, unit)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return units, nil
}

// SearchUnits performs a full text search over unit yields
func (h *UnitsDBHandler) SearchUnits(searchTerm string, limit int) ([]*model.Unit, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_units($1, $2)`,
		searchTerm,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanUnits(rows, model.RetrievalMethodText)
}

// UpdateUnitEmbedding updates the embedding of a unit
func (h *UnitsDBHandler) UpdateUnitEmbedding(id int64, embedding []float32) error {
	var embeddingParam interface{}
	if len(embedding) > 0 {
		embeddingParam = pq.Array(embedding)
	} else {
		embeddingParam = nil
	}

	_, err := h.db.Instance.Exec(
		`SELECT update_unit_embedding($1, $2)`,
		id,
		embeddingParam,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteUnit deletes a unit by ID
func (h *UnitsDBHandler) DeleteUnit(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_unit($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanUnits(rows *sql.Rows, method model.RetrievalMethod) ([]*model.Unit, error) {
	var units []*model.Unit
	for rows.Next() {
		unit := &model.Unit{}
		err := rows.Scan(
			&unit.ID,
			&unit.PassageID,
			&unit.PassageRID,
			&unit.NodeID,
			&unit.Category,
			&unit.Text,
			&unit.StartPos,
			&unit.EndPos,
			&unit.Metadata,
			&unit.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		unit.RetrievalMethod = method
		units = append(units, unit)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return units, nil
}
