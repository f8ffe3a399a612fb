package services

import (
	"testing"
	"time"

	"parcel-dispatch-service/internal/adapters/distance"
	"parcel-dispatch-service/internal/adapters/store"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var serviceDay = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	hub      = "4001 South 700 East"
	addrA    = "195 W Oakland Ave"
	addrB    = "2530 S 500 E"
	addrC    = "233 Canyon Rd"
	addrD    = "380 W 2880 S"
	addrE    = "410 S State St"
	wrongAdr = "300 State St"
)

func clock(h, m int) time.Time { return domain.At(serviceDay, h, m) }

func clockPtr(h, m int) *time.Time {
	t := clock(h, m)
	return &t
}

// lineIndex places the hub and A..E on a line one mile apart.
func lineIndex(t *testing.T) *distance.MatrixIndex {
	t.Helper()

	idx, err := distance.FromRows(
		[]string{hub, addrA, addrB, addrC, addrD, addrE},
		[][]float64{
			{0},
			{1, 0},
			{2, 1, 0},
			{3, 2, 1, 0},
			{4, 3, 2, 1, 0},
			{5, 4, 3, 2, 1, 0},
		},
	)
	require.NoError(t, err)
	return idx
}

func parcel(id int, address string, deadline domain.Deadline) *domain.Parcel {
	return &domain.Parcel{ParcelID: id, Address: address, Deadline: deadline, Status: domain.StatusAtHub}
}

func eod() domain.Deadline { return domain.Deadline{At: domain.EndOfDay(serviceDay), EndOfDay: true} }

func by(h, m int) domain.Deadline { return domain.Deadline{At: clock(h, m)} }

// dayParcels is ten parcels along the line; parcel 9 starts with an address the index does not know.
func dayParcels() []*domain.Parcel {
	return []*domain.Parcel{
		parcel(1, addrA, by(10, 30)),
		parcel(2, addrB, eod()),
		parcel(3, addrC, eod()),
		parcel(4, addrD, eod()),
		parcel(5, addrE, eod()),
		parcel(6, addrA, eod()),
		parcel(7, addrB, eod()),
		parcel(8, addrC, eod()),
		parcel(9, wrongAdr, eod()),
		parcel(10, addrD, by(10, 30)),
	}
}

func dayConstraints() domain.Constraints {
	return domain.Constraints{
		Groups:   []domain.HardGroup{{VehicleID: 1, ParcelIDs: []int{1, 2, 3}}},
		Arrivals: []domain.HubArrival{{ParcelIDs: []int{6}, ArrivesAt: clock(9, 5)}},
		Correction: &domain.Correction{
			ParcelID:    9,
			Address:     addrE,
			EffectiveAt: clock(10, 20),
		},
	}
}

func dayVehicles() []*domain.Vehicle {
	return []*domain.Vehicle{
		domain.NewVehicle(1, 4, 18, hub, clockPtr(8, 0)),
		domain.NewVehicle(2, 4, 18, hub, clockPtr(9, 5)),
		domain.NewVehicle(3, 4, 18, hub, nil),
	}
}

func dayRequest(floor *time.Time) DispatchRequest {
	return DispatchRequest{
		Hub:                    hub,
		ShiftStart:             clock(8, 0),
		DeferredDepartureFloor: floor,
		Drivers:                2,
		Vehicles:               dayVehicles(),
		Constraints:            dayConstraints(),
	}
}

// runDay dispatches the fixture day and returns the outcome with its store.
func runDay(t *testing.T) (*Outcome, *store.MemoryParcelStore) {
	t.Helper()

	s := newDayStore(dayParcels())
	d := NewDispatcher(lineIndex(t), s, nopLog(), nil)

	out, err := d.Run(t.Context(), dayRequest(clockPtr(10, 20)))
	require.NoError(t, err)
	return out, s
}

func newDayStore(parcels []*domain.Parcel) *store.MemoryParcelStore {
	return store.NewMemoryParcelStore(parcels)
}

func nopLog() *zap.SugaredLogger { return logger.Nop() }

func ids(ps []*domain.Parcel) []int { return parcelIDs(ps) }
