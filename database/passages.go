package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/ucca/helper"
	"github.com/siherrmann/ucca/model"
	"github.com/siherrmann/ucca/sql"
)

// PassagesDBHandlerFunctions defines the interface for Passages database operations.
type PassagesDBHandlerFunctions interface {
	InsertPassage(record *model.PassageRecord) error
	SelectPassage(rid uuid.UUID) (*model.PassageRecord, error)
	SelectPassageByPassageID(passageID string) (*model.PassageRecord, error)
	SelectAllPassages(lastCreatedAt *time.Time, limit int) ([]*model.PassageRecord, error)
	SearchPassages(searchTerm string, limit int) ([]*model.PassageRecord, error)
	UpdatePassage(record *model.PassageRecord) error
	DeletePassage(rid uuid.UUID) error
}

// PassagesDBHandler handles passage-related database operations
type PassagesDBHandler struct {
	db *helper.Database
}

// NewPassagesDBHandler creates a new passages database handler.
// It initializes the database connection and loads passage-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewPassagesDBHandler(db *helper.Database, force bool) (*PassagesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	passagesDbHandler := &PassagesDBHandler{
		db: db,
	}

	err := sql.LoadPassagesSql(passagesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load passages sql", err)
	}

	err = passagesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PassagesDBHandler")

	return passagesDbHandler, nil
}

// CreateTable creates the 'passages' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes and triggers.
func (h *PassagesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables, triggers, and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_passages();`)
	if err != nil {
		log.Panicf("error initializing passages table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table passages")

	return nil
}

// InsertPassage inserts a new passage record
func (h *PassagesDBHandler) InsertPassage(record *model.PassageRecord) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_passage($1, $2, $3)`,
		record.PassageID,
		record.XML,
		record.Metadata,
	)

	err := row.Scan(
		&record.ID,
		&record.RID,
		&record.PassageID,
		&record.XML,
		&record.Metadata,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectPassage retrieves a passage record by RID
func (h *PassagesDBHandler) SelectPassage(rid uuid.UUID) (*model.PassageRecord, error) {
	record := &model.PassageRecord{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_passage($1)`,
		rid,
	)

	err := row.Scan(
		&record.ID,
		&record.RID,
		&record.PassageID,
		&record.XML,
		&record.Metadata,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return record, nil
}

// SelectPassageByPassageID retrieves the latest record with the given passage ID
func (h *PassagesDBHandler) SelectPassageByPassageID(passageID string) (*model.PassageRecord, error) {
	record := &model.PassageRecord{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_passage_by_passage_id($1)`,
		passageID,
	)

	err := row.Scan(
		&record.ID,
		&record.RID,
		&record.PassageID,
		&record.XML,
		&record.Metadata,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return record, nil
}

// SelectAllPassages retrieves all passage records with pagination.
// The XML blob is not included in the results.
func (h *PassagesDBHandler) SelectAllPassages(lastCreatedAt *time.Time, limit int) ([]*model.PassageRecord, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_passages($1, $2)`,
		lastCreatedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []*model.PassageRecord
	for rows.Next() {
		record := &model.PassageRecord{}
		err := rows.Scan(
			&record.ID,
			&record.RID,
			&record.PassageID,
			&record.Metadata,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// SearchPassages performs a full text search over the stored XML.
// The XML blob is not included in the results.
func (h *PassagesDBHandler) SearchPassages(searchTerm string, limit int) ([]*model.PassageRecord, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_passages($1, $2)`,
		searchTerm,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []*model.PassageRecord
	for rows.Next() {
		record := &model.PassageRecord{}
		err := rows.Scan(
			&record.ID,
			&record.RID,
			&record.PassageID,
			&record.Metadata,
			&record.CreatedAt,
			&record.UpdatedAt,
			&record.Rank,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// UpdatePassage updates a passage record
func (h *PassagesDBHandler) UpdatePassage(record *model.PassageRecord) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_passage($1, $2, $3)`,
		record.RID,
		record.XML,
		record.Metadata,
	)

	err := row.Scan(
		&record.ID,
		&record.RID,
		&record.PassageID,
		&record.XML,
		&record.Metadata,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeletePassage deletes a passage record by RID
func (h *PassagesDBHandler) DeletePassage(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_passage($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
