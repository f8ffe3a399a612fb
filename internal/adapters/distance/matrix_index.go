package distance

import (
	"errors"
	"fmt"
	"math"
	"parcel-dispatch-service/internal/domain"
	"strings"
)

// MatrixIndex implements DistanceIndex over a precomputed distance matrix.
//
// Missing cells are filled from their mirror at construction time; a cell missing
// in both directions becomes +Inf so that unreachable stops sort last.
// The index is read-only after construction and safe for concurrent use.
type MatrixIndex struct {
	index map[string]int
	miles [][]float64
}

// normalize ensures consistent lookup keys by collapsing whitespace and case.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func NewMatrixIndex(network *domain.Network) (*MatrixIndex, error) {
	if network == nil {
		return nil, errors.New("new matrix index: network is nil")
	}

	n := len(network.Locations)
	if n == 0 {
		return nil, errors.New("new matrix index: no locations")
	}
	if len(network.Distances) > n {
		return nil, fmt.Errorf("new matrix index: %d distance rows for %d locations", len(network.Distances), n)
	}

	idx := &MatrixIndex{
		index: make(map[string]int, 2*n),
		miles: make([][]float64, n),
	}

	for _, loc := range network.Locations {
		if loc.Index < 0 || loc.Index >= n {
			return nil, fmt.Errorf("new matrix index: location %q has index %d outside [0,%d)", loc.Address, loc.Index, n)
		}

		key := normalize(loc.Address)
		if key == "" {
			return nil, fmt.Errorf("new matrix index: location #%d has empty address", loc.Index)
		}
		if prev, ok := idx.index[key]; ok && prev != loc.Index {
			return nil, fmt.Errorf("new matrix index: address %q maps to both %d and %d", loc.Address, prev, loc.Index)
		}
		idx.index[key] = loc.Index

		// Names are secondary keys; an address always wins a collision.
		if name := normalize(loc.Name); name != "" {
			if _, ok := idx.index[name]; !ok {
				idx.index[name] = loc.Index
			}
		}
	}

	cell := func(i, j int) (float64, bool) {
		if i >= len(network.Distances) || j >= len(network.Distances[i]) {
			return 0, false
		}
		v := network.Distances[i][j]
		if v == nil {
			return 0, false
		}
		return *v, true
	}

	for i := 0; i < n; i++ {
		idx.miles[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			v, ok := cell(i, j)
			if !ok {
				v, ok = cell(j, i)
			}
			if !ok {
				idx.miles[i][j] = math.Inf(1)
				continue
			}
			if v < 0 || math.IsNaN(v) {
				return nil, fmt.Errorf("new matrix index: invalid distance %v between #%d and #%d", v, i, j)
			}
			idx.miles[i][j] = v
		}
	}

	return idx, nil
}

// FromRows builds an index from an address list and a (possibly triangular) matrix.
func FromRows(addresses []string, rows [][]float64) (*MatrixIndex, error) {
	network := &domain.Network{
		Locations: make([]domain.Location, 0, len(addresses)),
		Distances: make([][]*float64, 0, len(rows)),
	}
	for i, a := range addresses {
		network.Locations = append(network.Locations, domain.Location{Index: i, Address: a})
	}
	for _, row := range rows {
		cells := make([]*float64, len(row))
		for j := range row {
			cells[j] = &row[j]
		}
		network.Distances = append(network.Distances, cells)
	}
	return NewMatrixIndex(network)
}

func (m *MatrixIndex) Resolve(address string) (int, bool) {
	i, ok := m.index[normalize(address)]
	return i, ok
}

func (m *MatrixIndex) Distance(from string, to string) (float64, error) {
	i, ok := m.Resolve(from)
	if !ok {
		return 0, fmt.Errorf("distance %q -> %q: origin: %w", from, to, domain.ErrUnresolvableAddress)
	}

	j, ok := m.Resolve(to)
	if !ok {
		return 0, fmt.Errorf("distance %q -> %q: destination: %w", from, to, domain.ErrUnresolvableAddress)
	}

	return m.miles[i][j], nil
}

// Size is the number of locations in the matrix.
func (m *MatrixIndex) Size() int { return len(m.miles) }
