package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"time"
)

var (
	_ ports.ParcelRepository  = (*SqliteRepository)(nil)
	_ ports.NetworkRepository = (*SqliteRepository)(nil)
)

// SQLite-backed implementation of the parcel and network ports.
type SqliteRepository struct{ DB *sql.DB }

func NewSqliteRepository(db *sql.DB) *SqliteRepository {
	return &SqliteRepository{DB: db}
}

// Return all parcels stored in the database, ordered by ID.
func (s *SqliteRepository) ListParcels(ctx context.Context, day time.Time) ([]*domain.Parcel, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite repository: DB is nil")
	}

	query := `
	SELECT
		parcel_id,
		address,
		city,
		zip,
		deadline,
		weight,
		notes
	FROM parcels
	ORDER BY parcel_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list parcels: query parcels table: %w", err)
	}
	defer rows.Close()

	parcels := make([]*domain.Parcel, 0, 64)
	for rows.Next() {
		var (
			id                            int
			address, city, zip, dl, notes string
			weight                        float64
		)
		if err := rows.Scan(&id, &address, &city, &zip, &dl, &weight, &notes); err != nil {
			return nil, fmt.Errorf("list parcels: scan row: %w", err)
		}

		p, err := parcelFromRow(day, id, address, city, zip, dl, weight, notes)
		if err != nil {
			return nil, fmt.Errorf("list parcels: %w", err)
		}
		parcels = append(parcels, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parcels: row iteration: %w", err)
	}

	return parcels, nil
}

// Load the address table and every stored distance cell.
func (s *SqliteRepository) LoadNetwork(ctx context.Context) (*domain.Network, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite repository: DB is nil")
	}

	locRows, err := s.DB.QueryContext(ctx, `
	SELECT location_index, name, address
	FROM locations
	ORDER BY location_index;
	`)
	if err != nil {
		return nil, fmt.Errorf("load network: query locations table: %w", err)
	}
	defer locRows.Close()

	locations := make([]domain.Location, 0, 32)
	for locRows.Next() {
		var l domain.Location
		if err := locRows.Scan(&l.Index, &l.Name, &l.Address); err != nil {
			return nil, fmt.Errorf("load network: scan location: %w", err)
		}
		locations = append(locations, l)
	}
	if err := locRows.Err(); err != nil {
		return nil, fmt.Errorf("load network: location iteration: %w", err)
	}

	distRows, err := s.DB.QueryContext(ctx, `
	SELECT from_index, to_index, miles
	FROM distances;
	`)
	if err != nil {
		return nil, fmt.Errorf("load network: query distances table: %w", err)
	}
	defer distRows.Close()

	cells := make([]distanceRow, 0, len(locations)*len(locations)/2)
	for distRows.Next() {
		var c distanceRow
		if err := distRows.Scan(&c.from, &c.to, &c.miles); err != nil {
			return nil, fmt.Errorf("load network: scan distance: %w", err)
		}
		cells = append(cells, c)
	}
	if err := distRows.Err(); err != nil {
		return nil, fmt.Errorf("load network: distance iteration: %w", err)
	}

	network, err := buildNetwork(locations, cells)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}

	return network, nil
}

// Persist each parcel's outcome, replacing any earlier run's row.
func (s *SqliteRepository) SaveDeliveries(ctx context.Context, parcels []*domain.Parcel) error {
	if s.DB == nil {
		return errors.New("sqlite repository: DB is nil")
	}
	if len(parcels) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save deliveries: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO deliveries (parcel_id, vehicle_id, status, address, delivered_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (parcel_id) DO UPDATE
	SET vehicle_id = excluded.vehicle_id,
		status = excluded.status,
		address = excluded.address,
		delivered_at = excluded.delivered_at;
	`)
	if err != nil {
		return fmt.Errorf("save deliveries: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range parcels {
		var deliveredAt sql.NullString
		if p.DeliveredAt != nil {
			deliveredAt = sql.NullString{String: p.DeliveredAt.Format(time.RFC3339), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, p.ParcelID, p.VehicleID, string(p.Status), p.Address, deliveredAt); err != nil {
			return fmt.Errorf("save deliveries: parcel_id=%d: %w", p.ParcelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save deliveries: commit tx: %w", err)
	}

	return nil
}
