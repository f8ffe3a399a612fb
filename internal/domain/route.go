package domain

import "time"

// Represents a single stop visited by a vehicle during simulation.
// A RouteStop corresponds to arriving at a destination at the simulated clock time
// and delivering every parcel aboard for that address.
type RouteStop struct {
	Address   string
	ArriveAt  time.Time
	ParcelIDs []int
	Miles     float64
}
