package repositories

import (
	"context"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ ports.ParcelRepository  = (*PgRepository)(nil)
	_ ports.NetworkRepository = (*PgRepository)(nil)
)

// PostgreSQL-backed implementation of the parcel and network ports on a native pgx pool.
type PgRepository struct{ Pool *pgxpool.Pool }

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{Pool: pool}
}

// Migrate creates the tables if they do not exist.
func (r *PgRepository) Migrate(ctx context.Context) error {
	if r.Pool == nil {
		return errors.New("pg repository: pool is nil")
	}

	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migrate: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schemaStatements("DOUBLE PRECISION", "TIMESTAMPTZ") {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("migrate: commit tx: %w", err)
	}
	return nil
}

// Seed upserts a dataset in one batch.
func (r *PgRepository) Seed(ctx context.Context, data *Seed) error {
	if r.Pool == nil {
		return errors.New("pg repository: pool is nil")
	}

	batch := &pgx.Batch{}
	for _, l := range data.Locations {
		batch.Queue(`
		INSERT INTO locations (location_index, name, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (location_index) DO UPDATE
		SET name = EXCLUDED.name,
			address = EXCLUDED.address;
		`, l.Index, l.Name, l.Address)
	}
	for i, row := range data.Distances {
		for j, miles := range row {
			if miles == nil {
				continue
			}
			batch.Queue(`
			INSERT INTO distances (from_index, to_index, miles)
			VALUES ($1, $2, $3)
			ON CONFLICT (from_index, to_index) DO UPDATE
			SET miles = EXCLUDED.miles;
			`, i, j, *miles)
		}
	}
	for _, p := range data.Parcels {
		batch.Queue(`
		INSERT INTO parcels (parcel_id, address, city, zip, deadline, weight, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (parcel_id) DO UPDATE
		SET address = EXCLUDED.address,
			city = EXCLUDED.city,
			zip = EXCLUDED.zip,
			deadline = EXCLUDED.deadline,
			weight = EXCLUDED.weight,
			notes = EXCLUDED.notes;
		`, p.ParcelID, p.Address, p.City, p.Zip, p.Deadline, p.Weight, p.Notes)
	}

	if err := r.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

func (r *PgRepository) ListParcels(ctx context.Context, day time.Time) ([]*domain.Parcel, error) {
	if r.Pool == nil {
		return nil, errors.New("pg repository: pool is nil")
	}

	rows, err := r.Pool.Query(ctx, `
	SELECT parcel_id, address, city, zip, deadline, weight, notes
	FROM parcels
	ORDER BY parcel_id;
	`)
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

func (r *PgRepository) LoadNetwork(ctx context.Context) (*domain.Network, error) {
	if r.Pool == nil {
		return nil, errors.New("pg repository: pool is nil")
	}

	locRows, err := r.Pool.Query(ctx, `
	SELECT location_index, name, address
	FROM locations
	ORDER BY location_index;
	`)
	if err != nil {
		return nil, fmt.Errorf("load network: query locations table: %w", err)
	}
	locations, err := pgx.CollectRows(locRows, func(row pgx.CollectableRow) (domain.Location, error) {
		var l domain.Location
		err := row.Scan(&l.Index, &l.Name, &l.Address)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("load network: scan locations: %w", err)
	}

	distRows, err := r.Pool.Query(ctx, `
	SELECT from_index, to_index, miles
	FROM distances;
	`)
	if err != nil {
		return nil, fmt.Errorf("load network: query distances table: %w", err)
	}
	cells, err := pgx.CollectRows(distRows, func(row pgx.CollectableRow) (distanceRow, error) {
		var c distanceRow
		err := row.Scan(&c.from, &c.to, &c.miles)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("load network: scan distances: %w", err)
	}

	network, err := buildNetwork(locations, cells)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	return network, nil
}

func (r *PgRepository) SaveDeliveries(ctx context.Context, parcels []*domain.Parcel) error {
	if r.Pool == nil {
		return errors.New("pg repository: pool is nil")
	}
	if len(parcels) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range parcels {
		batch.Queue(`
		INSERT INTO deliveries (parcel_id, vehicle_id, status, address, delivered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (parcel_id) DO UPDATE
		SET vehicle_id = EXCLUDED.vehicle_id,
			status = EXCLUDED.status,
			address = EXCLUDED.address,
			delivered_at = EXCLUDED.delivered_at;
		`, p.ParcelID, p.VehicleID, string(p.Status), p.Address, p.DeliveredAt)
	}

	if err := r.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("save deliveries: %w", err)
	}
	return nil
}

// sendBatch runs the queued statements in one transaction.
func (r *PgRepository) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch statement #%d: %w", i+1, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
