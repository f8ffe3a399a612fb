package repositories

import (
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"strings"
	"time"
)

type distanceRow struct {
	from, to int
	miles    float64
}

// buildNetwork turns location and distance rows into a square matrix with nil gaps.
func buildNetwork(locations []domain.Location, cells []distanceRow) (*domain.Network, error) {
	n := len(locations)
	network := &domain.Network{Locations: locations, Distances: make([][]*float64, n)}
	for i := range network.Distances {
		network.Distances[i] = make([]*float64, n)
	}

	for _, c := range cells {
		if c.from < 0 || c.from >= n || c.to < 0 || c.to >= n {
			return nil, fmt.Errorf("distance (%d,%d) outside %d locations", c.from, c.to, n)
		}
		miles := c.miles
		network.Distances[c.from][c.to] = &miles
	}

	return network, nil
}

// parcelFromRow parses a stored parcel onto the service day.
func parcelFromRow(day time.Time, id int, address, city, zip, deadline string, weight float64, notes string) (*domain.Parcel, error) {
	dl, err := domain.ParseDeadline(day, deadline)
	if err != nil {
		return nil, fmt.Errorf("parcel %d: %w", id, err)
	}

	return &domain.Parcel{
		ParcelID: id,
		Address:  strings.TrimSpace(address),
		City:     city,
		Zip:      zip,
		Deadline: dl,
		Weight:   weight,
		Notes:    notes,
		Status:   domain.StatusAtHub,
	}, nil
}
