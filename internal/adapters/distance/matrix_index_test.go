package distance

import (
	"errors"
	"math"
	"parcel-dispatch-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestMatrixIndexMirrorsMissingCells(t *testing.T) {
	network := &domain.Network{
		Locations: []domain.Location{
			{Index: 0, Name: "Western Governors University", Address: "4001 South 700 East"},
			{Index: 1, Address: "195 W Oakland Ave"},
			{Index: 2, Address: "2530 S 500 E"},
		},
		// Lower triangle only, like the source distance table.
		Distances: [][]*float64{
			{ptr(0)},
			{ptr(7.2), ptr(0)},
			{ptr(3.8), nil, ptr(0)},
		},
	}

	idx, err := NewMatrixIndex(network)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Size())

	d, err := idx.Distance("4001 South 700 East", "195 W Oakland Ave")
	require.NoError(t, err)
	require.Equal(t, 7.2, d)

	d, err = idx.Distance("195 W Oakland Ave", "4001 South 700 East")
	require.NoError(t, err)
	require.Equal(t, 7.2, d)

	d, err = idx.Distance("2530 S 500 E", "195 W Oakland Ave")
	require.NoError(t, err)
	require.True(t, math.IsInf(d, 1), "missing in both directions should be +Inf, got %v", d)

	d, err = idx.Distance("western governors   university", "2530 s 500 e")
	require.NoError(t, err)
	require.Equal(t, 3.8, d)
}

func TestMatrixIndexUnresolvableAddress(t *testing.T) {
	idx, err := FromRows([]string{"HUB", "A"}, [][]float64{{0, 3}, {3, 0}})
	require.NoError(t, err)

	_, err = idx.Distance("HUB", "nowhere")
	require.True(t, errors.Is(err, domain.ErrUnresolvableAddress))

	_, err = idx.Distance("nowhere", "A")
	require.True(t, errors.Is(err, domain.ErrUnresolvableAddress))

	_, ok := idx.Resolve("a")
	require.True(t, ok)
}

func TestMatrixIndexRejectsBadInput(t *testing.T) {
	_, err := NewMatrixIndex(nil)
	require.Error(t, err)

	_, err = FromRows([]string{"HUB", "A"}, [][]float64{{0, -1}})
	require.Error(t, err)

	_, err = FromRows([]string{"HUB", "hub"}, nil)
	require.Error(t, err)

	_, err = FromRows([]string{"HUB"}, [][]float64{{0}, {1}})
	require.Error(t, err)
}
