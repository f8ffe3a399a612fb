package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type LocationSeed struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type ParcelSeed struct {
	ParcelID int     `json:"parcel_id"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	Zip      string  `json:"zip"`
	Deadline string  `json:"deadline"`
	Weight   float64 `json:"weight"`
	Notes    string  `json:"notes"`
}

// Seed is the on-disk dataset: the address table, a (usually lower-triangular)
// distance matrix in miles with null for unknown cells, and the day's parcels.
type Seed struct {
	Locations []LocationSeed `json:"locations"`
	Distances [][]*float64   `json:"distances"`
	Parcels   []ParcelSeed   `json:"parcels"`
}

// ReadSeed loads and validates a dataset file.
func ReadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("read seed: parse json: %w", err)
	}

	if err := data.normalize(); err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	return &data, nil
}

func (s *Seed) normalize() error {
	if len(s.Locations) == 0 {
		return fmt.Errorf("no locations")
	}
	if len(s.Distances) > len(s.Locations) {
		return fmt.Errorf("%d distance rows for %d locations", len(s.Distances), len(s.Locations))
	}

	for i := range s.Locations {
		loc := &s.Locations[i]
		loc.Address = strings.TrimSpace(loc.Address)
		loc.Name = strings.TrimSpace(loc.Name)
		if loc.Address == "" {
			return fmt.Errorf("location at index %d: address cannot be empty", i+1)
		}
		if loc.Index < 0 || loc.Index >= len(s.Locations) {
			return fmt.Errorf("location %q: index %d out of range", loc.Address, loc.Index)
		}
	}

	seen := make(map[int]struct{}, len(s.Parcels))
	for i := range s.Parcels {
		p := &s.Parcels[i]
		if p.ParcelID <= 0 {
			return fmt.Errorf("invalid parcel_id at index %d: %d", i+1, p.ParcelID)
		}
		if _, ok := seen[p.ParcelID]; ok {
			return fmt.Errorf("duplicate parcel_id %d", p.ParcelID)
		}
		seen[p.ParcelID] = struct{}{}

		p.Address = strings.TrimSpace(p.Address)
		if p.Address == "" {
			return fmt.Errorf("parcel %d: address cannot be empty", p.ParcelID)
		}
		p.Deadline = strings.TrimSpace(p.Deadline)
		if p.Deadline == "" {
			p.Deadline = "EOD"
		}
	}

	return nil
}

// Populate the SQLite database with a dataset from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	data, err := ReadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	locStmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO locations (location_index, name, address)
	VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer locStmt.Close()

	for _, l := range data.Locations {
		if _, err := locStmt.ExecContext(ctx, l.Index, l.Name, l.Address); err != nil {
			return fmt.Errorf("seed locations: insert index=%d: %w", l.Index, err)
		}
	}

	distStmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO distances (from_index, to_index, miles)
	VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed distances: prepare insert: %w", err)
	}
	defer distStmt.Close()

	for i, row := range data.Distances {
		for j, miles := range row {
			if miles == nil {
				continue
			}
			if _, err := distStmt.ExecContext(ctx, i, j, *miles); err != nil {
				return fmt.Errorf("seed distances: insert (%d,%d): %w", i, j, err)
			}
		}
	}

	parcelStmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO parcels (
		parcel_id,
		address,
		city,
		zip,
		deadline,
		weight,
		notes
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed parcels: prepare insert: %w", err)
	}
	defer parcelStmt.Close()

	for _, p := range data.Parcels {
		if _, err := parcelStmt.ExecContext(ctx, p.ParcelID, p.Address, p.City, p.Zip, p.Deadline, p.Weight, p.Notes); err != nil {
			return fmt.Errorf("seed parcels: insert parcel_id=%d: %w", p.ParcelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
