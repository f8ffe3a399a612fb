package domain

import "time"

// Driver is a scarce resource that must be checked out before a vehicle can depart.
type Driver struct {
	DriverID    int
	VehicleID   int
	AvailableAt time.Time
}

func (d *Driver) Free() bool { return d.VehicleID == 0 }

// AssignVehicle checks the driver out to v.
func (d *Driver) AssignVehicle(v *Vehicle) {
	d.VehicleID = v.VehicleID
	v.DriverID = d.DriverID
}

// Release frees the driver at the given time.
func (d *Driver) Release(at time.Time) {
	d.VehicleID = 0
	d.AvailableAt = at
}
