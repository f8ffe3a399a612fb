package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNopRecorderDoesNotPanic(t *testing.T) {
	m := NewNop()

	require.NotPanics(t, func() {
		m.RecordRun(3, 40, time.Millisecond)
		m.RecordDelivery(1, true)
		m.RecordVehicleMiles(1, 42.5)
		m.RecordSkippedStop("unresolvable")
		m.RecordStatusQuery("parcel", false)
	})
}

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "test")

	m.RecordRun(3, 40, 2*time.Millisecond)
	m.RecordDelivery(1, false)
	m.RecordDelivery(1, false)
	m.RecordDelivery(2, true)
	m.RecordVehicleMiles(2, 31.7)
	m.RecordSkippedStop("unreachable")
	m.RecordStatusQuery("parcel", true)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs))
	require.Equal(t, 40.0, testutil.ToFloat64(m.runParcels))
	require.Equal(t, 2.0, testutil.ToFloat64(m.deliveries.WithLabelValues("1", "false")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("2", "true")))
	require.Equal(t, 31.7, testutil.ToFloat64(m.vehicleMiles.WithLabelValues("2")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.skippedStops.WithLabelValues("unreachable")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("parcel", "hit")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
