package ports

import (
	"context"
	"parcel-dispatch-service/internal/domain"
	"time"
)

// Port: a boundary for retrieving Parcel entities and persisting delivery outcomes.
type ParcelRepository interface {
	// Retrieve all parcels for the service day, ordered by ID.
	ListParcels(ctx context.Context, day time.Time) ([]*domain.Parcel, error)
	// Persist status, delivery timestamp, vehicle, and correction for each parcel.
	SaveDeliveries(ctx context.Context, parcels []*domain.Parcel) error
}

// Port: a boundary for retrieving the address table and distance matrix.
type NetworkRepository interface {
	LoadNetwork(ctx context.Context) (*domain.Network, error)
}
