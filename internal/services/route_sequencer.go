package services

import (
	"math"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"slices"
	"time"

	"go.uber.org/zap"
)

// RouteSequencer orders parcels for loading and for delivery.
type RouteSequencer struct {
	index ports.DistanceIndex
	log   *zap.SugaredLogger
}

func NewRouteSequencer(index ports.DistanceIndex, log *zap.SugaredLogger) *RouteSequencer {
	return &RouteSequencer{index: index, log: log}
}

// stopGroup is every loaded parcel bound for one address.
type stopGroup struct {
	address  string
	parcels  []*domain.Parcel
	earliest time.Time
}

// groupByAddress keeps first-appearance order of addresses and input order within each group.
func groupByAddress(parcels []*domain.Parcel) []*stopGroup {
	byAddress := make(map[string]*stopGroup)
	groups := make([]*stopGroup, 0, len(parcels))

	for _, p := range parcels {
		g, ok := byAddress[p.Address]
		if !ok {
			g = &stopGroup{address: p.Address, earliest: p.Deadline.At}
			byAddress[p.Address] = g
			groups = append(groups, g)
		}
		g.parcels = append(g.parcels, p)
		if p.Deadline.At.Before(g.earliest) {
			g.earliest = p.Deadline.At
		}
	}

	return groups
}

// Sequence orders a load list with a greedy nearest-stop walk from start.
//
// At each step the nearest unvisited address wins; equal distances go to the address
// whose earliest deadline comes first, then to the address seen first in the input.
// All parcels for an address are emitted together. Addresses the index cannot resolve
// are appended at the end in input order so no parcel leaves the load list.
// The walk never backtracks and is not optimal.
func (s *RouteSequencer) Sequence(start string, parcels []*domain.Parcel) []*domain.Parcel {
	if len(parcels) == 0 {
		return []*domain.Parcel{}
	}

	if _, ok := s.index.Resolve(start); !ok {
		s.log.Warnw("route start unresolvable; ordering by deadline", "address", start)
	}

	var remaining, deferred []*stopGroup
	for _, g := range groupByAddress(parcels) {
		if _, ok := s.index.Resolve(g.address); !ok {
			s.log.Warnw("unresolvable address deferred to end of route",
				"address", g.address, "parcel_ids", parcelIDs(g.parcels))
			deferred = append(deferred, g)
			continue
		}
		remaining = append(remaining, g)
	}

	out := make([]*domain.Parcel, 0, len(parcels))
	cursor := start

	for len(remaining) > 0 {
		best := -1
		bestDist := math.Inf(1)

		// Select next stop by minimum distance (greedy step).
		for i, g := range remaining {
			d, err := s.index.Distance(cursor, g.address)
			if err != nil {
				d = math.Inf(1)
			}

			if best == -1 || d < bestDist || (d == bestDist && g.earliest.Before(remaining[best].earliest)) {
				best = i
				bestDist = d
			}
		}

		next := remaining[best]
		out = append(out, next.parcels...)
		cursor = next.address
		remaining = slices.Delete(remaining, best, best+1)
	}

	for _, g := range deferred {
		out = append(out, g.parcels...)
	}

	return out
}

// SortForLoading orders the parcel pool by hub distance, then deadline, then parcel ID.
// Parcels whose address cannot be resolved sort last.
func (s *RouteSequencer) SortForLoading(hub string, parcels []*domain.Parcel) []*domain.Parcel {
	hubDist := make(map[int]float64, len(parcels))
	for _, p := range parcels {
		d, err := s.index.Distance(hub, p.Address)
		if err != nil {
			s.log.Warnw("parcel address unresolvable for loading order", "parcel_id", p.ParcelID, "address", p.Address)
			d = math.Inf(1)
		}
		hubDist[p.ParcelID] = d
	}

	out := slices.Clone(parcels)
	slices.SortStableFunc(out, func(a, b *domain.Parcel) int {
		da, db := hubDist[a.ParcelID], hubDist[b.ParcelID]
		if da < db {
			return -1
		}
		if da > db {
			return 1
		}
		if c := a.Deadline.At.Compare(b.Deadline.At); c != 0 {
			return c
		}
		return a.ParcelID - b.ParcelID
	})

	return out
}

func parcelIDs(parcels []*domain.Parcel) []int {
	ids := make([]int, 0, len(parcels))
	for _, p := range parcels {
		ids = append(ids, p.ParcelID)
	}
	return ids
}
