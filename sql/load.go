package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed passages.sql
var passagesSQL string

//go:embed units.sql
var unitsSQL string

// Function lists for verification
var PassagesFunctions = []string{
	"init_passages",
	"insert_passage",
	"select_passage",
	"select_passage_by_passage_id",
	"select_all_passages",
	"search_passages",
	"update_passage",
	"delete_passage",
}

var UnitsFunctions = []string{
	"init_units",
	"insert_unit",
	"select_unit",
	"select_units_by_passage",
	"select_units_by_category",
	"select_units_by_similarity",
	"search_units",
	"update_unit_embedding",
	"delete_unit",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadPassagesSql loads passage-related SQL functions
func LoadPassagesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, PassagesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing passages functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(passagesSQL)
	if err != nil {
		return fmt.Errorf("error executing passages SQL: %w", err)
	}

	exist, err := checkFunctions(db, PassagesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL passages functions loaded successfully")
	return nil
}

// LoadUnitsSql loads unit-related SQL functions
func LoadUnitsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, UnitsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing units functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(unitsSQL)
	if err != nil {
		return fmt.Errorf("error executing units SQL: %w", err)
	}

	exist, err := checkFunctions(db, UnitsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL units functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadPassagesSql(db, force); err != nil {
		return err
	}

	if err := LoadUnitsSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
