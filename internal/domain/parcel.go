package domain

import (
	"fmt"
	"time"
)

// AddressCorrection records a one-time destination change.
// Before EffectiveAt the parcel is known only by PriorAddress.
type AddressCorrection struct {
	PriorAddress string
	EffectiveAt  time.Time
}

// Represents a single delivery unit handled by the system.
// A Parcel is created once from the load step; simulation only mutates
// its status, delivery timestamp, vehicle assignment, and the one-time correction.
type Parcel struct {
	ParcelID     int
	Address      string
	City         string
	Zip          string
	Deadline     Deadline
	Weight       float64
	Notes        string
	Status       ParcelStatus
	DeliveredAt  *time.Time
	VehicleID    int
	Correction   *AddressCorrection
	HubArrivalAt *time.Time
}

// ApplyCorrection swaps in the corrected destination and keeps the prior one for as-of queries.
func (p *Parcel) ApplyCorrection(address string, effectiveAt time.Time) error {
	if p.Correction != nil {
		return fmt.Errorf("apply correction: parcel %d already corrected: %w", p.ParcelID, ErrInvariantViolation)
	}

	p.Correction = &AddressCorrection{PriorAddress: p.Address, EffectiveAt: effectiveAt}
	p.Address = address
	return nil
}

// MarkDelivered stamps the delivery time and moves the parcel to its terminal status.
func (p *Parcel) MarkDelivered(at time.Time) {
	delivered := at
	p.DeliveredAt = &delivered
	p.Status = StatusDelivered
}

// AddressAt returns the destination that was known at t.
func (p *Parcel) AddressAt(t time.Time) string {
	if p.Correction != nil && t.Before(p.Correction.EffectiveAt) {
		return p.Correction.PriorAddress
	}
	return p.Address
}

// Late reports whether the recorded delivery happened after the deadline.
func (p *Parcel) Late() bool {
	return p.DeliveredAt != nil && p.Deadline.Missed(*p.DeliveredAt)
}

// AvailableAt is the earliest time the parcel can leave the hub on a vehicle.
func (p *Parcel) AvailableAt() (time.Time, bool) {
	if p.HubArrivalAt == nil {
		return time.Time{}, false
	}
	return *p.HubArrivalAt, true
}

// Validate checks the record-level invariants.
func (p *Parcel) Validate() error {
	if p.Status == StatusDelivered && p.DeliveredAt == nil {
		return fmt.Errorf("parcel %d delivered without timestamp: %w", p.ParcelID, ErrInvariantViolation)
	}
	if p.Correction != nil && (p.Correction.PriorAddress == "" || p.Correction.EffectiveAt.IsZero()) {
		return fmt.Errorf("parcel %d has a partial correction record: %w", p.ParcelID, ErrInvariantViolation)
	}
	return nil
}
