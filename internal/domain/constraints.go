package domain

import (
	"fmt"
	"time"
)

// HardGroup is a set of parcels that must travel on the same vehicle.
// A zero VehicleID lets the planner pick the first vehicle that admits the whole group.
type HardGroup struct {
	VehicleID int
	ParcelIDs []int
}

// HubArrival marks parcels that are not physically at the hub until ArrivesAt.
type HubArrival struct {
	ParcelIDs []int
	ArrivesAt time.Time
}

// Correction is a scheduled address change for one parcel.
type Correction struct {
	ParcelID    int
	Address     string
	EffectiveAt time.Time
}

// Constraints is the declarative rule set consumed by the assignment planner.
type Constraints struct {
	Groups     []HardGroup
	Arrivals   []HubArrival
	Correction *Correction
}

// Validate rejects constraints that reference unknown parcels or place a parcel in two groups.
func (c Constraints) Validate(known func(id int) bool) error {
	seen := make(map[int]int)
	for gi, g := range c.Groups {
		if len(g.ParcelIDs) == 0 {
			return fmt.Errorf("group #%d is empty: %w", gi+1, ErrInvalidConstraints)
		}
		for _, id := range g.ParcelIDs {
			if !known(id) {
				return fmt.Errorf("group #%d references unknown parcel %d: %w", gi+1, id, ErrInvalidConstraints)
			}
			if prev, ok := seen[id]; ok {
				return fmt.Errorf("parcel %d appears in groups #%d and #%d: %w", id, prev, gi+1, ErrInvalidConstraints)
			}
			seen[id] = gi + 1
		}
	}

	for _, a := range c.Arrivals {
		for _, id := range a.ParcelIDs {
			if !known(id) {
				return fmt.Errorf("hub arrival references unknown parcel %d: %w", id, ErrInvalidConstraints)
			}
		}
	}

	if c.Correction != nil {
		if !known(c.Correction.ParcelID) {
			return fmt.Errorf("correction references unknown parcel %d: %w", c.Correction.ParcelID, ErrInvalidConstraints)
		}
		if c.Correction.Address == "" {
			return fmt.Errorf("correction for parcel %d has no address: %w", c.Correction.ParcelID, ErrInvalidConstraints)
		}
	}

	return nil
}

// ApplyArrivals stamps HubArrivalAt on the affected parcels.
func (c Constraints) ApplyArrivals(lookup func(id int) (*Parcel, bool)) {
	for _, a := range c.Arrivals {
		for _, id := range a.ParcelIDs {
			if p, ok := lookup(id); ok {
				at := a.ArrivesAt
				p.HubArrivalAt = &at
			}
		}
	}
}
