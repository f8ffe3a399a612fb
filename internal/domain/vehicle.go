package domain

import (
	"fmt"
	"math"
	"time"
)

// Delivery vehicle aggregate holding its load list and simulation state.
// Miles and Clock only grow; Parcels only shrinks once the vehicle departs.
type Vehicle struct {
	VehicleID    int
	SpeedMPH     float64
	Capacity     int
	Location     string
	DepartAt     *time.Time
	Clock        time.Time
	Miles        float64
	MilesHistory []float64
	Parcels      []*Parcel
	Manifest     []int
	Stops        []RouteStop
	ReturnedAt   *time.Time
	DriverID     int
}

func NewVehicle(id int, capacity int, speedMPH float64, hub string, departAt *time.Time) *Vehicle {
	v := &Vehicle{
		VehicleID: id,
		SpeedMPH:  speedMPH,
		Capacity:  capacity,
		Location:  hub,
	}
	if departAt != nil {
		at := *departAt
		v.DepartAt = &at
		v.Clock = at
	}
	return v
}

// TravelTime converts miles at a given speed into a duration rounded to the nanosecond.
func TravelTime(miles, speedMPH float64) time.Duration {
	return time.Duration(math.Round(miles / speedMPH * float64(time.Hour)))
}

// Load a single parcel onto the vehicle.
func (v *Vehicle) Load(p *Parcel) error {
	if v.Full() {
		return fmt.Errorf("load vehicle: vehicle %d (capacity=%d): %w", v.VehicleID, v.Capacity, ErrVehicleFull)
	}
	v.Parcels = append(v.Parcels, p)
	p.VehicleID = v.VehicleID
	return nil
}

// Load multiple parcels onto the vehicle.
func (v *Vehicle) LoadMultiple(ps []*Parcel) error {
	for _, p := range ps {
		if err := v.Load(p); err != nil {
			return err
		}
	}

	return nil
}

func (v *Vehicle) Full() bool { return len(v.Parcels) >= v.Capacity }

// Remaining is the number of free slots.
func (v *Vehicle) Remaining() int { return v.Capacity - len(v.Parcels) }

// Unload all parcels from the vehicle.
func (v *Vehicle) Clear() {
	for _, p := range v.Parcels {
		p.VehicleID = 0
	}
	v.Parcels = nil
	v.Manifest = nil
}

// Resequence replaces the load list with ordered and freezes the manifest.
func (v *Vehicle) Resequence(ordered []*Parcel) {
	v.Parcels = ordered
	v.Manifest = make([]int, 0, len(ordered))
	for _, p := range ordered {
		v.Manifest = append(v.Manifest, p.ParcelID)
	}
}

// Depart sets the departure timestamp and starts the vehicle clock.
func (v *Vehicle) Depart(at time.Time) {
	departed := at
	v.DepartAt = &departed
	v.Clock = at
}

func (v *Vehicle) Departed() bool { return v.DepartAt != nil }

// DriveTo advances the clock by the travel time and accumulates mileage.
func (v *Vehicle) DriveTo(address string, miles float64) time.Time {
	v.Clock = v.Clock.Add(TravelTime(miles, v.SpeedMPH))
	v.Miles += miles
	v.Location = address
	return v.Clock
}

// UnloadAt removes every parcel for address from the load list and returns them in load order.
func (v *Vehicle) UnloadAt(address string) []*Parcel {
	var dropped, kept []*Parcel
	for _, p := range v.Parcels {
		if p.Address == address {
			dropped = append(dropped, p)
			continue
		}
		kept = append(kept, p)
	}
	v.Parcels = kept
	return dropped
}

// RecordDelivery appends the running mileage once per delivered parcel.
func (v *Vehicle) RecordDelivery() {
	v.MilesHistory = append(v.MilesHistory, v.Miles)
}

// ReturnToHub closes the route at the current clock.
func (v *Vehicle) ReturnToHub() {
	returned := v.Clock
	v.ReturnedAt = &returned
}

// MilesAfter returns the odometer after the given number of deliveries.
func (v *Vehicle) MilesAfter(delivered int) float64 {
	if delivered <= 0 || len(v.MilesHistory) == 0 {
		return 0
	}
	return v.MilesHistory[min(delivered, len(v.MilesHistory))-1]
}
