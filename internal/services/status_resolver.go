package services

import (
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"slices"
	"time"
)

// StatusResolver reconstructs as-of views of a fully simulated run.
// It only reads the fleet model; every answer is derived from recorded timestamps.
type StatusResolver struct {
	store    ports.ParcelStore
	vehicles map[int]*domain.Vehicle
	order    []int
}

func NewStatusResolver(store ports.ParcelStore, vehicles []*domain.Vehicle) *StatusResolver {
	r := &StatusResolver{
		store:    store,
		vehicles: make(map[int]*domain.Vehicle, len(vehicles)),
		order:    make([]int, 0, len(vehicles)),
	}
	for _, v := range vehicles {
		r.vehicles[v.VehicleID] = v
		r.order = append(r.order, v.VehicleID)
	}
	slices.Sort(r.order)
	return r
}

// StatusAsOf returns the parcel's status and lateness at the given time.
func (r *StatusResolver) StatusAsOf(parcelID int, at time.Time) (domain.ParcelStatus, bool, error) {
	snap, err := r.ParcelAt(parcelID, at)
	if err != nil {
		return "", false, err
	}
	return snap.Status, snap.Late, nil
}

// ParcelAt resolves one parcel at the given time.
func (r *StatusResolver) ParcelAt(parcelID int, at time.Time) (domain.ParcelSnapshot, error) {
	p, ok := r.store.Get(parcelID)
	if !ok {
		return domain.ParcelSnapshot{}, fmt.Errorf("parcel %d: %w", parcelID, domain.ErrNotFound)
	}
	return resolveParcel(p, r.vehicles[p.VehicleID], at), nil
}

// VehicleAt resolves a vehicle and every parcel on its manifest at the given time.
func (r *StatusResolver) VehicleAt(vehicleID int, at time.Time) (domain.VehicleSnapshot, error) {
	v, ok := r.vehicles[vehicleID]
	if !ok {
		return domain.VehicleSnapshot{}, fmt.Errorf("vehicle %d: %w", vehicleID, domain.ErrNotFound)
	}

	snap := domain.VehicleSnapshot{
		VehicleID:  v.VehicleID,
		At:         at,
		Status:     vehicleStatus(v, at),
		DepartAt:   v.DepartAt,
		ReturnedAt: v.ReturnedAt,
		Parcels:    make([]domain.ParcelSnapshot, 0, len(v.Manifest)),
	}

	for _, id := range v.Manifest {
		p, ok := r.store.Get(id)
		if !ok {
			continue
		}
		ps := resolveParcel(p, v, at)
		switch ps.Status {
		case domain.StatusDelivered:
			snap.Delivered++
		case domain.StatusErroneous:
			snap.Erroneous++
		default:
			snap.Remaining++
		}
		snap.Parcels = append(snap.Parcels, ps)
	}
	snap.Miles = milesAsOf(v, snap.Delivered, at)

	return snap, nil
}

// FleetReport resolves every vehicle at the given time.
func (r *StatusResolver) FleetReport(at time.Time) domain.FleetReport {
	report := domain.FleetReport{At: at, Vehicles: make([]domain.VehicleSnapshot, 0, len(r.order))}
	for _, id := range r.order {
		snap, err := r.VehicleAt(id, at)
		if err != nil {
			continue
		}
		report.Vehicles = append(report.Vehicles, snap)
		report.TotalMiles += snap.Miles
	}
	return report
}

// MilesAsOf returns how far the vehicle had driven at the given time.
func (r *StatusResolver) MilesAsOf(vehicleID int, at time.Time) (float64, error) {
	snap, err := r.VehicleAt(vehicleID, at)
	if err != nil {
		return 0, err
	}
	return snap.Miles, nil
}

func resolveParcel(p *domain.Parcel, v *domain.Vehicle, at time.Time) domain.ParcelSnapshot {
	snap := domain.ParcelSnapshot{
		ParcelID:  p.ParcelID,
		VehicleID: p.VehicleID,
		At:        at,
		Address:   p.AddressAt(at),
		Deadline:  p.Deadline,
	}

	switch {
	case p.DeliveredAt != nil && !at.Before(*p.DeliveredAt):
		snap.Status = domain.StatusDelivered
		delivered := *p.DeliveredAt
		snap.DeliveredAt = &delivered
	case p.Correction != nil && at.Before(p.Correction.EffectiveAt):
		snap.Status = domain.StatusErroneous
	case p.HubArrivalAt != nil && at.Before(*p.HubArrivalAt):
		snap.Status = domain.StatusNotAtHub
	case v == nil || v.DepartAt == nil || at.Before(*v.DepartAt):
		snap.Status = domain.StatusAtHub
	case v.ReturnedAt == nil || at.Before(*v.ReturnedAt):
		snap.Status = domain.StatusEnRoute
	default:
		// Back at the hub undelivered.
		snap.Status = domain.StatusAtHub
	}

	if snap.Status == domain.StatusDelivered {
		snap.Late = p.Late()
	} else {
		snap.Late = p.Deadline.Missed(at)
	}

	return snap
}

func vehicleStatus(v *domain.Vehicle, at time.Time) domain.VehicleStatus {
	switch {
	case v.DepartAt == nil || at.Before(*v.DepartAt):
		return domain.VehicleNotDeparted
	case v.ReturnedAt == nil || at.Before(*v.ReturnedAt):
		return domain.VehicleEnRoute
	default:
		return domain.VehicleReturned
	}
}

func milesAsOf(v *domain.Vehicle, delivered int, at time.Time) float64 {
	if v.DepartAt == nil || at.Before(*v.DepartAt) {
		return 0
	}
	if v.ReturnedAt != nil && !at.Before(*v.ReturnedAt) {
		return v.Miles
	}
	return v.MilesAfter(delivered)
}
