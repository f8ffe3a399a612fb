package services

import (
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
)

// DriverPool hands out a fixed set of drivers; at most len(drivers) vehicles hold one at a time.
type DriverPool struct {
	drivers []*domain.Driver
}

func NewDriverPool(count int) (*DriverPool, error) {
	if count < 1 {
		return nil, errors.New("new driver pool: at least one driver is required")
	}

	drivers := make([]*domain.Driver, 0, count)
	for i := 0; i < count; i++ {
		drivers = append(drivers, &domain.Driver{DriverID: i + 1})
	}
	return &DriverPool{drivers: drivers}, nil
}

// NextFree returns the free driver released earliest (lowest ID on ties) without checking it out.
func (d *DriverPool) NextFree() (*domain.Driver, bool) {
	var best *domain.Driver
	for _, drv := range d.drivers {
		if !drv.Free() {
			continue
		}
		if best == nil || drv.AvailableAt.Before(best.AvailableAt) {
			best = drv
		}
	}
	return best, best != nil
}

// Checkout assigns the next free driver to v; ok is false when every driver is out.
func (d *DriverPool) Checkout(v *domain.Vehicle) (*domain.Driver, bool) {
	drv, ok := d.NextFree()
	if !ok {
		return nil, false
	}
	drv.AssignVehicle(v)
	return drv, true
}

// Release returns the driver of v to the pool at the vehicle's return time.
func (d *DriverPool) Release(v *domain.Vehicle) error {
	for _, drv := range d.drivers {
		if drv.DriverID != v.DriverID {
			continue
		}
		if drv.VehicleID != v.VehicleID {
			return fmt.Errorf("release driver %d: held by vehicle %d, not %d: %w",
				drv.DriverID, drv.VehicleID, v.VehicleID, domain.ErrInvariantViolation)
		}

		at := v.Clock
		if v.ReturnedAt != nil {
			at = *v.ReturnedAt
		}
		drv.Release(at)
		v.DriverID = 0
		return nil
	}

	return fmt.Errorf("release driver: vehicle %d holds no driver: %w", v.VehicleID, domain.ErrInvariantViolation)
}

// CheckedOut is the number of drivers currently assigned to a vehicle.
func (d *DriverPool) CheckedOut() int {
	n := 0
	for _, drv := range d.drivers {
		if !drv.Free() {
			n++
		}
	}
	return n
}

// Drivers returns the pool members ordered by ID.
func (d *DriverPool) Drivers() []*domain.Driver {
	return d.drivers
}
