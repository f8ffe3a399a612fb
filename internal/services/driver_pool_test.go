package services

import (
	"errors"
	"testing"

	"parcel-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverPoolCheckoutAndRelease(t *testing.T) {
	_, err := NewDriverPool(0)
	require.Error(t, err)

	pool, err := NewDriverPool(2)
	require.NoError(t, err)

	v1 := domain.NewVehicle(1, 4, 18, hub, clockPtr(8, 0))
	v2 := domain.NewVehicle(2, 4, 18, hub, clockPtr(9, 5))
	v3 := domain.NewVehicle(3, 4, 18, hub, nil)

	d1, ok := pool.Checkout(v1)
	require.True(t, ok)
	d2, ok := pool.Checkout(v2)
	require.True(t, ok)
	assert.Equal(t, 1, d1.DriverID)
	assert.Equal(t, 2, d2.DriverID)
	assert.Equal(t, 2, pool.CheckedOut())

	_, ok = pool.Checkout(v3)
	require.False(t, ok, "no vehicle departs without a driver")

	v2.ReturnedAt = clockPtr(9, 30)
	require.NoError(t, pool.Release(v2))
	v1.ReturnedAt = clockPtr(10, 0)
	require.NoError(t, pool.Release(v1))
	assert.Zero(t, v1.DriverID)

	next, ok := pool.NextFree()
	require.True(t, ok)
	assert.Equal(t, 2, next.DriverID)
	assert.Equal(t, clock(9, 30), next.AvailableAt)

	err = pool.Release(v1)
	require.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestDriverPoolNextFreePrefersLowestIDOnTie(t *testing.T) {
	pool, err := NewDriverPool(3)
	require.NoError(t, err)

	next, ok := pool.NextFree()
	require.True(t, ok)
	assert.Equal(t, 1, next.DriverID)
}
