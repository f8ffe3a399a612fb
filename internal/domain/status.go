package domain

// ParcelStatus is the observable state of a parcel at some instant.
type ParcelStatus string

const (
	StatusNotAtHub  ParcelStatus = "Not At Hub"
	StatusAtHub     ParcelStatus = "At Hub"
	StatusErroneous ParcelStatus = "Erroneous"
	StatusEnRoute   ParcelStatus = "En Route"
	StatusDelivered ParcelStatus = "Delivered"
)

// VehicleStatus is derived from departure and return timestamps only.
type VehicleStatus string

const (
	VehicleNotDeparted VehicleStatus = "Not Departed"
	VehicleEnRoute     VehicleStatus = "En Route"
	VehicleReturned    VehicleStatus = "Returned"
)
