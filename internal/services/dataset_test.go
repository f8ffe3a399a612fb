package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"parcel-dispatch-service/internal/domain"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	parcels    []*domain.Parcel
	network    *domain.Network
	parcelErr  error
	networkErr error
}

func (f *fakeRepo) ListParcels(context.Context, time.Time) ([]*domain.Parcel, error) {
	return f.parcels, f.parcelErr
}

func (f *fakeRepo) SaveDeliveries(context.Context, []*domain.Parcel) error { return nil }

func (f *fakeRepo) LoadNetwork(context.Context) (*domain.Network, error) {
	return f.network, f.networkErr
}

func TestLoadDataset(t *testing.T) {
	repo := &fakeRepo{
		parcels: dayParcels(),
		network: &domain.Network{Locations: []domain.Location{{Index: 0, Address: hub}}},
	}

	ds, err := LoadDataset(context.Background(), serviceDay, repo, repo)
	require.NoError(t, err)
	require.Len(t, ds.Parcels, 10)
	require.Len(t, ds.Network.Locations, 1)
}

func TestLoadDatasetPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := &fakeRepo{networkErr: boom}

	_, err := LoadDataset(context.Background(), serviceDay, repo, repo)
	require.ErrorIs(t, err, boom)
}
