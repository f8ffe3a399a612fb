package services

import (
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"slices"
	"time"

	"go.uber.org/zap"
)

// AssignmentPlanner partitions parcels across vehicles under the hard constraints.
//
// Vehicles are loaded one at a time in priority order. Each load first places the
// hard groups bound to that vehicle (or unbound groups that fit whole), then fills
// the remaining capacity greedily from the loading-sorted pool. A parcel is eligible
// for a vehicle only if it is at the hub and, for the corrected parcel, its new
// address is known by the vehicle's departure.
type AssignmentPlanner struct {
	constraints domain.Constraints
	log         *zap.SugaredLogger

	pool     []*domain.Parcel
	assigned map[int]int
	groupOf  map[int]int
}

func NewAssignmentPlanner(
	hub string,
	parcels []*domain.Parcel,
	constraints domain.Constraints,
	sequencer *RouteSequencer,
	log *zap.SugaredLogger,
) (*AssignmentPlanner, error) {
	known := make(map[int]struct{}, len(parcels))
	for _, p := range parcels {
		if _, dup := known[p.ParcelID]; dup {
			return nil, fmt.Errorf("new planner: parcel %d listed twice: %w", p.ParcelID, domain.ErrInvariantViolation)
		}
		known[p.ParcelID] = struct{}{}
	}

	isKnown := func(id int) bool {
		_, ok := known[id]
		return ok
	}
	if err := constraints.Validate(isKnown); err != nil {
		return nil, fmt.Errorf("new planner: %w", err)
	}

	groupOf := make(map[int]int)
	for gi, g := range constraints.Groups {
		for _, id := range g.ParcelIDs {
			groupOf[id] = gi
		}
	}

	return &AssignmentPlanner{
		constraints: constraints,
		log:         log,
		pool:        sequencer.SortForLoading(hub, parcels),
		assigned:    make(map[int]int, len(parcels)),
		groupOf:     groupOf,
	}, nil
}

// Eligible reports whether p may ride a vehicle departing at depart.
func (a *AssignmentPlanner) Eligible(p *domain.Parcel, depart time.Time) bool {
	if at, ok := p.AvailableAt(); ok && depart.Before(at) {
		return false
	}
	if c := a.constraints.Correction; c != nil && c.ParcelID == p.ParcelID && depart.Before(c.EffectiveAt) {
		return false
	}
	return true
}

// LoadVehicle fills v for a departure at depart and returns the number of parcels loaded.
func (a *AssignmentPlanner) LoadVehicle(v *domain.Vehicle, depart time.Time) (int, error) {
	before := len(v.Parcels)

	for gi, g := range a.constraints.Groups {
		if g.VehicleID != v.VehicleID || a.groupPlaced(gi) {
			continue
		}

		members := a.groupMembers(gi)
		for _, p := range members {
			if !a.Eligible(p, depart) {
				return 0, fmt.Errorf(
					"load vehicle %d: group #%d parcel %d not available by %s: %w",
					v.VehicleID, gi+1, p.ParcelID, depart.Format(domain.ClockLayout), domain.ErrInvalidConstraints,
				)
			}
		}
		if len(members) > v.Remaining() {
			return 0, fmt.Errorf("load vehicle %d: group #%d: %w",
				v.VehicleID, gi+1, &domain.CapacityExceededError{ParcelIDs: parcelIDs(members)})
		}
		if err := a.loadAll(v, members); err != nil {
			return 0, err
		}
	}

	for gi, g := range a.constraints.Groups {
		if g.VehicleID != 0 || a.groupPlaced(gi) {
			continue
		}

		members := a.groupMembers(gi)
		if len(members) > v.Remaining() || !a.allEligible(members, depart) {
			continue
		}
		if err := a.loadAll(v, members); err != nil {
			return 0, err
		}
	}

	for _, p := range a.pool {
		if v.Full() {
			break
		}
		if _, ok := a.assigned[p.ParcelID]; ok {
			continue
		}
		// Group members only move as a whole.
		if _, grouped := a.groupOf[p.ParcelID]; grouped {
			continue
		}
		if !a.Eligible(p, depart) {
			continue
		}
		if err := a.load(v, p); err != nil {
			return 0, err
		}
	}

	loaded := len(v.Parcels) - before
	a.log.Infow("vehicle loaded",
		"vehicle_id", v.VehicleID,
		"depart_at", depart.Format(domain.ClockLayout),
		"loaded", loaded,
		"capacity", v.Capacity,
	)

	return loaded, nil
}

// Unassigned returns the IDs of parcels not yet placed, ascending.
func (a *AssignmentPlanner) Unassigned() []int {
	ids := make([]int, 0)
	for _, p := range a.pool {
		if _, ok := a.assigned[p.ParcelID]; !ok {
			ids = append(ids, p.ParcelID)
		}
	}
	slices.Sort(ids)
	return ids
}

// AssignedTo returns the vehicle holding a parcel, or 0.
func (a *AssignmentPlanner) AssignedTo(parcelID int) int {
	return a.assigned[parcelID]
}

func (a *AssignmentPlanner) load(v *domain.Vehicle, p *domain.Parcel) error {
	if owner, ok := a.assigned[p.ParcelID]; ok {
		return fmt.Errorf("load vehicle %d: parcel %d already on vehicle %d: %w",
			v.VehicleID, p.ParcelID, owner, domain.ErrInvariantViolation)
	}

	if c := a.constraints.Correction; c != nil && c.ParcelID == p.ParcelID && p.Correction == nil {
		if err := p.ApplyCorrection(c.Address, c.EffectiveAt); err != nil {
			return fmt.Errorf("load vehicle %d: %w", v.VehicleID, err)
		}
		a.log.Infow("address corrected",
			"parcel_id", p.ParcelID,
			"prior_address", p.Correction.PriorAddress,
			"address", p.Address,
			"effective_at", c.EffectiveAt.Format(domain.ClockLayout),
		)
	}

	if err := v.Load(p); err != nil {
		return fmt.Errorf("load vehicle %d: parcel %d: %w", v.VehicleID, p.ParcelID, err)
	}
	a.assigned[p.ParcelID] = v.VehicleID
	return nil
}

func (a *AssignmentPlanner) loadAll(v *domain.Vehicle, ps []*domain.Parcel) error {
	for _, p := range ps {
		if err := a.load(v, p); err != nil {
			return err
		}
	}
	return nil
}

// groupMembers returns the group's parcels in loading order.
func (a *AssignmentPlanner) groupMembers(gi int) []*domain.Parcel {
	members := make([]*domain.Parcel, 0, len(a.constraints.Groups[gi].ParcelIDs))
	for _, p := range a.pool {
		if g, ok := a.groupOf[p.ParcelID]; ok && g == gi {
			members = append(members, p)
		}
	}
	return members
}

func (a *AssignmentPlanner) groupPlaced(gi int) bool {
	for _, id := range a.constraints.Groups[gi].ParcelIDs {
		if _, ok := a.assigned[id]; ok {
			return true
		}
	}
	return false
}

func (a *AssignmentPlanner) allEligible(ps []*domain.Parcel, depart time.Time) bool {
	for _, p := range ps {
		if !a.Eligible(p, depart) {
			return false
		}
	}
	return true
}
