package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"parcel-dispatch-service/internal/adapters/cache"
	"parcel-dispatch-service/internal/adapters/distance"
	"parcel-dispatch-service/internal/adapters/store"
	"parcel-dispatch-service/internal/api/dto"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/logger"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	handler http.Handler
	mr      *miniredis.Miniredis
}

// newFixture dispatches two parcels on one vehicle: A at 8:10 and a corrected parcel at B.
func newFixture(t *testing.T) fixture {
	t.Helper()

	hub := "HUB"
	idx, err := distance.FromRows([]string{hub, "A", "B"}, [][]float64{{0}, {3, 0}, {6, 3, 0}})
	require.NoError(t, err)

	eod := domain.Deadline{At: domain.EndOfDay(day), EndOfDay: true}
	s := store.NewMemoryParcelStore([]*domain.Parcel{
		{ParcelID: 1, Address: "A", Deadline: domain.Deadline{At: domain.At(day, 9, 0)}, Status: domain.StatusAtHub},
		{ParcelID: 2, Address: "old", Deadline: eod, Status: domain.StatusAtHub},
	})

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheus(reg, "")
	depart := domain.At(day, 8, 0)

	out, err := services.NewDispatcher(idx, s, logger.Nop(), rec).Run(t.Context(), services.DispatchRequest{
		Hub:        hub,
		ShiftStart: depart,
		Drivers:    1,
		Vehicles:   []*domain.Vehicle{domain.NewVehicle(1, 4, 18, hub, &depart)},
		Constraints: domain.Constraints{
			Correction: &domain.Correction{ParcelID: 2, Address: "B", EffectiveAt: depart},
		},
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := NewRouter(Deps{
		Store:    s,
		Outcome:  out,
		Cache:    cache.NewRedisStatusCache(client, time.Minute),
		Day:      day,
		Log:      logger.Nop(),
		Metrics:  rec,
		Gatherer: reg,
	})
	return fixture{handler: h, mr: mr}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rr := get(t, f.handler, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestListParcels(t *testing.T) {
	f := newFixture(t)

	rr := get(t, f.handler, "/parcels")
	require.Equal(t, http.StatusOK, rr.Code)

	var res dto.ListParcelsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Parcels, 2)
	assert.Equal(t, "9:00 AM", res.Parcels[0].Deadline)
	require.NotNil(t, res.Parcels[0].DeliveredAt)
	assert.Equal(t, "8:10 AM", *res.Parcels[0].DeliveredAt)
	assert.Equal(t, "EOD", res.Parcels[1].Deadline)
}

func TestParcelStatusReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	target := "/parcels/1/status?at=" + url.QueryEscape("8:05 am")

	rr := get(t, f.handler, target)
	require.Equal(t, http.StatusOK, rr.Code)

	var res dto.ParcelStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, string(domain.StatusEnRoute), res.Status)
	assert.Equal(t, "8:05 AM", res.At)
	assert.Nil(t, res.DeliveredAt)

	rr = get(t, f.handler, target)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Len(t, f.mr.Keys(), 1)

	body := get(t, f.handler, "/metrics").Body.String()
	assert.Contains(t, body, `dispatch_status_queries_total{cache="hit",kind="parcel"} 1`)
	assert.Contains(t, body, `dispatch_status_queries_total{cache="miss",kind="parcel"} 1`)
}

func TestParcelStatusCorrectedAddress(t *testing.T) {
	f := newFixture(t)

	rr := get(t, f.handler, "/parcels/2/status")
	require.Equal(t, http.StatusOK, rr.Code)

	var res dto.ParcelStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, string(domain.StatusDelivered), res.Status)
	assert.Equal(t, "B", res.Address)
	assert.Equal(t, "11:59 PM", res.At)
}

func TestParcelStatusErrors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNotFound, get(t, f.handler, "/parcels/99/status").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, f.handler, "/parcels/abc/status").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, f.handler, "/parcels/1/status?at=noon").Code)
}

func TestVehicleStatusAndReport(t *testing.T) {
	f := newFixture(t)

	rr := get(t, f.handler, "/vehicles/1/status?at="+url.QueryEscape("8:15 AM"))
	require.Equal(t, http.StatusOK, rr.Code)

	var v dto.VehicleStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, string(domain.VehicleEnRoute), v.Status)
	assert.Equal(t, 1, v.Delivered)
	assert.Equal(t, 1, v.Remaining)
	assert.Equal(t, 3.0, v.Miles)
	require.Len(t, v.Parcels, 2)

	assert.Equal(t, http.StatusNotFound, get(t, f.handler, "/vehicles/7/status").Code)

	rr = get(t, f.handler, "/report")
	require.Equal(t, http.StatusOK, rr.Code)

	var rep dto.ReportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 12.0, rep.TotalMiles)
	require.Len(t, rep.Vehicles, 1)
	assert.Equal(t, string(domain.VehicleReturned), rep.Vehicles[0].Status)
	assert.Empty(t, rep.LateParcelIDs)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	rr := get(t, f.handler, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dispatch_simulation_runs_total 1")
}
