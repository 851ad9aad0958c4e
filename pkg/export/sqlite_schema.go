package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in export_meta.
const SchemaVersion = 1

// CreateSchema creates every table and index of the results database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

func createCoreTables(db *sql.DB) error {
	constituenciesSQL := `
		CREATE TABLE IF NOT EXISTS constituencies (
			id TEXT PRIMARY KEY,
			number INTEGER,
			name TEXT NOT NULL,
			name_local TEXT,
			district TEXT,
			type TEXT NOT NULL DEFAULT 'GEN',
			sub_region TEXT,
			description TEXT
		)
	`
	if _, err := db.Exec(constituenciesSQL); err != nil {
		return fmt.Errorf("create constituencies table: %w", err)
	}

	// One row per constituency and year. Margin columns stay NULL when the
	// result has no runner-up.
	resultsSQL := `
		CREATE TABLE IF NOT EXISTS results (
			year INTEGER NOT NULL,
			constituency_id TEXT NOT NULL,
			name TEXT NOT NULL,
			district TEXT,
			total_votes INTEGER,
			electors INTEGER,
			turnout REAL,
			num_candidates INTEGER,
			winner_name TEXT,
			winner_party TEXT,
			runner_up_name TEXT,
			runner_up_party TEXT,
			margin INTEGER,
			margin_percent REAL,
			PRIMARY KEY (year, constituency_id)
		)
	`
	if _, err := db.Exec(resultsSQL); err != nil {
		return fmt.Errorf("create results table: %w", err)
	}

	candidatesSQL := `
		CREATE TABLE IF NOT EXISTS candidates (
			year INTEGER NOT NULL,
			constituency_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			name TEXT NOT NULL,
			party TEXT,
			votes INTEGER NOT NULL,
			vote_share REAL,
			winner INTEGER NOT NULL DEFAULT 0,
			incumbent INTEGER NOT NULL DEFAULT 0,
			deposit_lost INTEGER NOT NULL DEFAULT 0,
			sex TEXT,
			age INTEGER,
			education TEXT,
			profession TEXT,
			PRIMARY KEY (year, constituency_id, rank),
			FOREIGN KEY (year, constituency_id) REFERENCES results(year, constituency_id)
		)
	`
	if _, err := db.Exec(candidatesSQL); err != nil {
		return fmt.Errorf("create candidates table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_constituencies_district ON constituencies(district)`,
		`CREATE INDEX IF NOT EXISTS idx_results_winner_party ON results(year, winner_party)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_name ON candidates(name COLLATE NOCASE)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_party ON candidates(year, party)`,
	}
	for _, q := range indexes {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`)
	return err
}

// InsertMetaValue inserts or replaces a metadata key.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file. Call it last, outside any
// transaction.
func OptimizeDatabase(db *sql.DB) error {
	for _, q := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Some pragmas fail depending on state; keep going.
		_, _ = db.Exec(q)
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
