package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements("REAL", "TEXT") {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// schemaStatements renders the DDL shared by both stores with dialect-specific
// float and timestamp column types.
func schemaStatements(floatType, timeType string) []string {
	createParcelsQuery := `
	CREATE TABLE IF NOT EXISTS parcels (
		parcel_id INTEGER PRIMARY KEY,
		address TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		zip TEXT NOT NULL DEFAULT '',
		deadline TEXT NOT NULL DEFAULT 'EOD',
		weight ` + floatType + ` NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT ''
	);
	`

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		location_index INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL UNIQUE
	);
	`

	createDistancesQuery := `
	CREATE TABLE IF NOT EXISTS distances (
		from_index INTEGER NOT NULL,
		to_index INTEGER NOT NULL,
		miles ` + floatType + ` NOT NULL,
		PRIMARY KEY (from_index, to_index)
	);
	`

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		parcel_id INTEGER PRIMARY KEY,
		vehicle_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		address TEXT NOT NULL,
		delivered_at ` + timeType + `
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distances_to_from
	ON distances(to_index, from_index);
	`

	return []string{
		createParcelsQuery,
		createLocationsQuery,
		createDistancesQuery,
		createDeliveriesQuery,
		createIndexQuery,
	}
}
