package services

import (
	"errors"
	"fmt"
	"math"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/ports"

	"go.uber.org/zap"
)

// SimulationEngine drives a sequenced vehicle against its own clock.
//
// Each leg advances the clock by distance / speed. Parcels are stamped Delivered on
// arrival and the odometer is recorded once per delivered parcel, which later lets
// the status resolver answer mileage-as-of queries without replaying the route.
type SimulationEngine struct {
	index   ports.DistanceIndex
	hub     string
	drivers *DriverPool
	log     *zap.SugaredLogger
	metrics metrics.Recorder
}

func NewSimulationEngine(
	index ports.DistanceIndex,
	hub string,
	drivers *DriverPool,
	log *zap.SugaredLogger,
	rec metrics.Recorder,
) *SimulationEngine {
	if rec == nil {
		rec = metrics.NewNop()
	}
	return &SimulationEngine{index: index, hub: hub, drivers: drivers, log: log, metrics: rec}
}

// Run executes the vehicle's load list in order, returns it to the hub, and releases its driver.
// Stops that cannot be resolved or reached are skipped; their parcels stay aboard undelivered.
func (e *SimulationEngine) Run(v *domain.Vehicle) error {
	if v.DepartAt == nil {
		return fmt.Errorf("simulate vehicle %d: no departure time: %w", v.VehicleID, domain.ErrInvariantViolation)
	}
	if v.DriverID == 0 {
		return fmt.Errorf("simulate vehicle %d: no driver: %w", v.VehicleID, domain.ErrInvariantViolation)
	}
	if v.SpeedMPH <= 0 {
		return fmt.Errorf("simulate vehicle %d: speed must be positive, got %v", v.VehicleID, v.SpeedMPH)
	}

	v.Clock = *v.DepartAt
	v.Location = e.hub
	for _, p := range v.Parcels {
		p.Status = domain.StatusEnRoute
	}

	e.log.Infow("vehicle departed",
		"vehicle_id", v.VehicleID,
		"driver_id", v.DriverID,
		"depart_at", v.DepartAt.Format(domain.ClockLayout),
		"parcels", len(v.Parcels),
	)

	for _, address := range stopOrder(v.Parcels) {
		miles, reason := e.leg(v.Location, address)
		if reason != "" {
			e.metrics.RecordSkippedStop(reason)
			e.log.Warnw("stop skipped",
				"vehicle_id", v.VehicleID,
				"address", address,
				"reason", reason,
			)
			continue
		}

		arrive := v.DriveTo(address, miles)
		dropped := v.UnloadAt(address)
		for _, p := range dropped {
			p.MarkDelivered(arrive)
			v.RecordDelivery()
			e.metrics.RecordDelivery(v.VehicleID, p.Late())
		}

		v.Stops = append(v.Stops, domain.RouteStop{
			Address:   address,
			ArriveAt:  arrive,
			ParcelIDs: parcelIDs(dropped),
			Miles:     v.Miles,
		})

		e.log.Debugw("stop delivered",
			"vehicle_id", v.VehicleID,
			"address", address,
			"arrive_at", arrive.Format(domain.ClockLayout),
			"parcel_ids", parcelIDs(dropped),
			"miles", v.Miles,
		)
	}

	back, reason := e.leg(v.Location, e.hub)
	if reason != "" {
		e.log.Warnw("return leg unavailable; closing route in place",
			"vehicle_id", v.VehicleID,
			"from", v.Location,
			"reason", reason,
		)
		back = 0
	}
	v.DriveTo(e.hub, back)
	v.ReturnToHub()

	for _, p := range v.Parcels {
		p.Status = domain.StatusAtHub
		e.log.Warnw("parcel returned undelivered", "vehicle_id", v.VehicleID, "parcel_id", p.ParcelID, "address", p.Address)
	}

	if err := e.drivers.Release(v); err != nil {
		return fmt.Errorf("simulate vehicle %d: %w", v.VehicleID, err)
	}

	e.metrics.RecordVehicleMiles(v.VehicleID, v.Miles)
	e.log.Infow("vehicle returned",
		"vehicle_id", v.VehicleID,
		"returned_at", v.ReturnedAt.Format(domain.ClockLayout),
		"miles", v.Miles,
		"delivered", len(v.MilesHistory),
	)

	return nil
}

// leg returns the miles between two addresses or a skip reason.
func (e *SimulationEngine) leg(from, to string) (float64, string) {
	miles, err := e.index.Distance(from, to)
	if err != nil {
		if errors.Is(err, domain.ErrUnresolvableAddress) {
			return 0, "unresolvable"
		}
		return 0, "lookup_failed"
	}
	if math.IsInf(miles, 1) {
		return 0, "unreachable"
	}
	return miles, ""
}

// stopOrder lists distinct addresses in load-list order.
func stopOrder(parcels []*domain.Parcel) []string {
	seen := make(map[string]struct{}, len(parcels))
	out := make([]string, 0, len(parcels))
	for _, p := range parcels {
		if _, ok := seen[p.Address]; ok {
			continue
		}
		seen[p.Address] = struct{}{}
		out = append(out, p.Address)
	}
	return out
}
