package services

import (
	"context"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dataset is everything a run reads from storage.
type Dataset struct {
	Parcels []*domain.Parcel
	Network *domain.Network
}

// LoadDataset fetches parcels and the distance network in parallel.
func LoadDataset(
	ctx context.Context,
	day time.Time,
	parcels ports.ParcelRepository,
	network ports.NetworkRepository,
) (*Dataset, error) {
	var ds Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := parcels.ListParcels(gctx, day)
		if err != nil {
			return fmt.Errorf("list parcels: %w", err)
		}
		ds.Parcels = ps
		return nil
	})
	g.Go(func() error {
		n, err := network.LoadNetwork(gctx)
		if err != nil {
			return fmt.Errorf("load network: %w", err)
		}
		ds.Network = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return &ds, nil
}
