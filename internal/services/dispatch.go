package services

import (
	"context"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DispatchRequest struct {
	Hub        string
	ShiftStart time.Time
	// DeferredDepartureFloor is the earliest time a vehicle waiting for a driver may leave.
	DeferredDepartureFloor *time.Time
	Drivers                int
	Vehicles               []*domain.Vehicle
	Constraints            domain.Constraints
}

// Outcome is the fully simulated state of one run.
type Outcome struct {
	RunID                uuid.UUID
	Vehicles             []*domain.Vehicle
	Drivers              []*domain.Driver
	TotalMiles           float64
	LateParcelIDs        []int
	UndeliveredParcelIDs []int
}

// Dispatcher plans and simulates a single day over the parcels in its store.
type Dispatcher struct {
	index   ports.DistanceIndex
	store   ports.ParcelStore
	log     *zap.SugaredLogger
	metrics metrics.Recorder
}

func NewDispatcher(
	index ports.DistanceIndex,
	store ports.ParcelStore,
	log *zap.SugaredLogger,
	rec metrics.Recorder,
) *Dispatcher {
	if rec == nil {
		rec = metrics.NewNop()
	}
	return &Dispatcher{index: index, store: store, log: log, metrics: rec}
}

// Run assigns, sequences, and simulates every vehicle in req.
//
// Vehicles with a fixed departure that can take a driver go first: all of them are
// loaded before any is simulated. The remaining vehicles then depart one by one as
// drivers come back, each loaded at its actual departure so that late arrivals and a
// due correction are picked up.
func (d *Dispatcher) Run(ctx context.Context, req DispatchRequest) (out *Outcome, err error) {
	defer obs.Time(ctx, d.log, "dispatch.Run")(&err)
	start := time.Now()

	if len(req.Vehicles) == 0 {
		return nil, fmt.Errorf("dispatch: no vehicles configured")
	}

	req.Constraints.ApplyArrivals(d.store.Get)

	parcels := d.store.All()
	sequencer := NewRouteSequencer(d.index, d.log)
	planner, err := NewAssignmentPlanner(req.Hub, parcels, req.Constraints, sequencer, d.log)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	pool, err := NewDriverPool(req.Drivers)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	engine := NewSimulationEngine(d.index, req.Hub, pool, d.log, d.metrics)

	vehicles := slices.Clone(req.Vehicles)
	slices.SortFunc(vehicles, func(a, b *domain.Vehicle) int { return a.VehicleID - b.VehicleID })

	var scheduled, waiting []*domain.Vehicle
	for _, v := range vehicles {
		if v.DepartAt == nil {
			waiting = append(waiting, v)
			continue
		}
		if _, ok := pool.Checkout(v); !ok {
			waiting = append(waiting, v)
			continue
		}
		scheduled = append(scheduled, v)
	}

	for _, v := range scheduled {
		if _, err := planner.LoadVehicle(v, *v.DepartAt); err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
	}

	for _, v := range scheduled {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
		if err := d.dispatchVehicle(v, *v.DepartAt, req.Hub, sequencer, engine, pool); err != nil {
			return nil, err
		}
	}

	for _, v := range waiting {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}

		drv, ok := pool.NextFree()
		if !ok {
			return nil, fmt.Errorf("dispatch: vehicle %d: no driver returned: %w", v.VehicleID, domain.ErrInvariantViolation)
		}

		depart := latest(drv.AvailableAt, req.ShiftStart)
		if req.DeferredDepartureFloor != nil {
			depart = latest(depart, *req.DeferredDepartureFloor)
		}
		if v.DepartAt != nil {
			depart = latest(depart, *v.DepartAt)
		}

		loaded, err := planner.LoadVehicle(v, depart)
		if err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
		if loaded == 0 {
			v.DepartAt = nil
			d.log.Infow("vehicle idle; nothing left to carry", "vehicle_id", v.VehicleID)
			continue
		}

		if _, ok := pool.Checkout(v); !ok {
			return nil, fmt.Errorf("dispatch: vehicle %d: driver checkout failed: %w", v.VehicleID, domain.ErrInvariantViolation)
		}
		if err := d.dispatchVehicle(v, depart, req.Hub, sequencer, engine, pool); err != nil {
			return nil, err
		}
	}

	if ids := planner.Unassigned(); len(ids) > 0 {
		return nil, fmt.Errorf("dispatch: %w", &domain.CapacityExceededError{ParcelIDs: ids})
	}
	if err := d.verify(vehicles); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	out = d.outcome(vehicles, pool)
	d.metrics.RecordRun(len(vehicles), d.store.Len(), time.Since(start))
	d.log.Infow("run complete",
		"run_id", out.RunID.String(),
		"vehicles", len(vehicles),
		"parcels", d.store.Len(),
		"total_miles", out.TotalMiles,
		"late_parcel_ids", out.LateParcelIDs,
		"undelivered_parcel_ids", out.UndeliveredParcelIDs,
	)

	return out, nil
}

// dispatchVehicle departs a loaded vehicle, or hands its driver back when it carries nothing.
func (d *Dispatcher) dispatchVehicle(
	v *domain.Vehicle,
	depart time.Time,
	hub string,
	sequencer *RouteSequencer,
	engine *SimulationEngine,
	pool *DriverPool,
) error {
	if len(v.Parcels) == 0 {
		v.Clock = depart
		if err := pool.Release(v); err != nil {
			return fmt.Errorf("dispatch: vehicle %d: %w", v.VehicleID, err)
		}
		v.DepartAt = nil
		d.log.Infow("vehicle idle; driver released", "vehicle_id", v.VehicleID)
		return nil
	}

	v.Depart(depart)
	v.Resequence(sequencer.Sequence(hub, v.Parcels))

	if err := engine.Run(v); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

// verify checks the partition across manifests and each parcel's record invariants.
func (d *Dispatcher) verify(vehicles []*domain.Vehicle) error {
	owner := make(map[int]int, d.store.Len())
	for _, v := range vehicles {
		for _, id := range v.Manifest {
			if prev, ok := owner[id]; ok {
				return fmt.Errorf("parcel %d on vehicles %d and %d: %w", id, prev, v.VehicleID, domain.ErrInvariantViolation)
			}
			owner[id] = v.VehicleID
		}
	}

	for _, p := range d.store.All() {
		if _, ok := owner[p.ParcelID]; !ok {
			return fmt.Errorf("parcel %d on no manifest: %w", p.ParcelID, domain.ErrInvariantViolation)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (d *Dispatcher) outcome(vehicles []*domain.Vehicle, pool *DriverPool) *Outcome {
	out := &Outcome{
		RunID:                uuid.New(),
		Vehicles:             vehicles,
		Drivers:              pool.Drivers(),
		LateParcelIDs:        []int{},
		UndeliveredParcelIDs: []int{},
	}

	for _, v := range vehicles {
		out.TotalMiles += v.Miles
	}
	for _, p := range d.store.All() {
		switch {
		case p.DeliveredAt == nil:
			out.UndeliveredParcelIDs = append(out.UndeliveredParcelIDs, p.ParcelID)
		case p.Late():
			out.LateParcelIDs = append(out.LateParcelIDs, p.ParcelID)
		}
	}

	return out
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
