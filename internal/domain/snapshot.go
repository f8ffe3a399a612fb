package domain

import "time"

// ParcelSnapshot is the derived, read-only view of a parcel at a query time.
type ParcelSnapshot struct {
	ParcelID    int
	VehicleID   int
	At          time.Time
	Status      ParcelStatus
	Address     string
	Deadline    Deadline
	DeliveredAt *time.Time
	Late        bool
}

// VehicleSnapshot is the derived view of a vehicle and its manifest at a query time.
type VehicleSnapshot struct {
	VehicleID  int
	At         time.Time
	Status     VehicleStatus
	DepartAt   *time.Time
	ReturnedAt *time.Time
	Miles      float64
	Delivered  int
	Remaining  int
	Erroneous  int
	Parcels    []ParcelSnapshot
}

// FleetReport aggregates every vehicle at a query time.
type FleetReport struct {
	At         time.Time
	Vehicles   []VehicleSnapshot
	TotalMiles float64
}
