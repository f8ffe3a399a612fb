package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Planning and simulation errors.
//
// ErrCapacityExceeded and ErrInvariantViolation abort a run. ErrUnresolvableAddress is
// logged by the caller and the affected stop is skipped. ErrNotFound answers status queries
// for unknown IDs.
var (
	// ErrUnresolvableAddress is returned when an address is absent from the distance index.
	ErrUnresolvableAddress = errors.New("unresolvable address")

	// ErrCapacityExceeded is returned when the fleet cannot place every parcel.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvariantViolation marks a programming error such as a parcel assigned twice.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrNotFound is returned for unknown parcel or vehicle IDs.
	ErrNotFound = errors.New("not found")

	// ErrVehicleFull is returned by Vehicle.Load when the load list is at capacity.
	ErrVehicleFull = errors.New("vehicle at full capacity")

	// ErrInvalidConstraints is returned when constraint data references unknown or conflicting parcels.
	ErrInvalidConstraints = errors.New("invalid constraints")
)

// CapacityExceededError names the parcels the planner could not place on any vehicle.
type CapacityExceededError struct {
	ParcelIDs []int
}

func (e *CapacityExceededError) Error() string {
	ids := slices.Clone(e.ParcelIDs)
	slices.Sort(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}

	return fmt.Sprintf("%v: %d parcel(s) unassigned: %s", ErrCapacityExceeded, len(ids), strings.Join(parts, ", "))
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }
