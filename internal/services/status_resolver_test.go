package services

import (
	"errors"
	"testing"
	"time"

	"parcel-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusResolverCorrectedParcel(t *testing.T) {
	out, s := runDay(t)
	r := NewStatusResolver(s, out.Vehicles)

	snap, err := r.ParcelAt(9, clock(10, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusErroneous, snap.Status)
	assert.Equal(t, wrongAdr, snap.Address)

	snap, err = r.ParcelAt(9, clock(10, 30))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnRoute, snap.Status)
	assert.Equal(t, addrE, snap.Address)
	assert.Equal(t, 3, snap.VehicleID)

	status, late, err := r.StatusAsOf(9, clock(11, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, status)
	assert.False(t, late)
}

func TestStatusResolverDelayedParcel(t *testing.T) {
	out, s := runDay(t)
	r := NewStatusResolver(s, out.Vehicles)

	cases := []struct {
		at   time.Time
		want domain.ParcelStatus
	}{
		{clock(8, 0), domain.StatusNotAtHub},
		{clock(9, 4), domain.StatusNotAtHub},
		{clock(9, 5), domain.StatusEnRoute},
		{clock(9, 8), domain.StatusEnRoute},
		{clock(9, 9), domain.StatusDelivered},
	}
	for _, tc := range cases {
		status, _, err := r.StatusAsOf(6, tc.at)
		require.NoError(t, err)
		assert.Equal(t, tc.want, status, "at %s", tc.at.Format(domain.ClockLayout))
	}
}

func TestStatusResolverUnknownIDs(t *testing.T) {
	out, s := runDay(t)
	r := NewStatusResolver(s, out.Vehicles)

	_, err := r.ParcelAt(99, clock(9, 0))
	require.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = r.VehicleAt(99, clock(9, 0))
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStatusResolverVehicleAsOf(t *testing.T) {
	out, s := runDay(t)
	r := NewStatusResolver(s, out.Vehicles)

	snap, err := r.VehicleAt(1, clock(7, 59))
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleNotDeparted, snap.Status)
	assert.Zero(t, snap.Miles)
	assert.Equal(t, 4, snap.Remaining)

	snap, err = r.VehicleAt(1, clock(8, 5))
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleEnRoute, snap.Status)
	assert.Equal(t, 1, snap.Delivered)
	assert.Equal(t, 3, snap.Remaining)
	assert.Equal(t, 1.0, snap.Miles)

	snap, err = r.VehicleAt(1, clock(8, 25))
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleReturned, snap.Status)
	assert.Equal(t, 4, snap.Delivered)
	assert.Equal(t, 6.0, snap.Miles)

	snap, err = r.VehicleAt(3, clock(10, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleNotDeparted, snap.Status)
	assert.Equal(t, 1, snap.Erroneous)
	assert.Equal(t, 1, snap.Remaining)

	miles, err := r.MilesAsOf(2, clock(23, 0))
	require.NoError(t, err)
	assert.Equal(t, 8.0, miles)
}

func TestStatusResolverFleetReport(t *testing.T) {
	out, s := runDay(t)
	r := NewStatusResolver(s, out.Vehicles)

	report := r.FleetReport(clock(23, 0))
	require.Len(t, report.Vehicles, 3)
	for i, v := range report.Vehicles {
		assert.Equal(t, i+1, v.VehicleID)
		assert.Equal(t, domain.VehicleReturned, v.Status)
	}
	assert.Equal(t, 24.0, report.TotalMiles)
	assert.Equal(t, out.TotalMiles, report.TotalMiles)

	morning := r.FleetReport(clock(7, 0))
	assert.Zero(t, morning.TotalMiles)
}

func TestStatusResolverIsMonotonic(t *testing.T) {
	out, s := runDay(t)
	r := NewStatusResolver(s, out.Vehicles)

	rank := map[domain.ParcelStatus]int{
		domain.StatusNotAtHub:  0,
		domain.StatusErroneous: 0,
		domain.StatusAtHub:     1,
		domain.StatusEnRoute:   2,
		domain.StatusDelivered: 3,
	}

	for _, p := range s.All() {
		prev := -1
		for at := clock(7, 0); !at.After(clock(12, 0)); at = at.Add(time.Minute) {
			status, _, err := r.StatusAsOf(p.ParcelID, at)
			require.NoError(t, err)
			require.GreaterOrEqual(t, rank[status], prev,
				"parcel %d went back to %s at %s", p.ParcelID, status, at.Format(domain.ClockLayout))
			prev = rank[status]
		}
		require.Equal(t, 3, prev, "parcel %d undelivered by noon", p.ParcelID)
	}
}

func TestStatusResolverDoesNotMutate(t *testing.T) {
	out, s := runDay(t)
	r := NewStatusResolver(s, out.Vehicles)

	p, ok := s.Get(9)
	require.True(t, ok)
	before := *p

	_, err := r.ParcelAt(9, clock(9, 0))
	require.NoError(t, err)
	_ = r.FleetReport(clock(9, 0))

	assert.Equal(t, before, *p)
}

func TestStatusResolverOverdueParcel(t *testing.T) {
	parcels := dayParcels()
	parcels[4].Deadline = by(10, 0)
	s := newDayStore(parcels)

	out, err := NewDispatcher(lineIndex(t), s, nopLog(), nil).Run(t.Context(), dayRequest(clockPtr(10, 20)))
	require.NoError(t, err)
	require.Equal(t, []int{5}, out.LateParcelIDs)

	r := NewStatusResolver(s, out.Vehicles)

	_, late, err := r.StatusAsOf(5, clock(9, 59))
	require.NoError(t, err)
	assert.False(t, late)

	status, late, err := r.StatusAsOf(5, clock(10, 10))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAtHub, status)
	assert.True(t, late, "undelivered past its deadline")

	status, late, err = r.StatusAsOf(5, clock(11, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, status)
	assert.True(t, late)
}
