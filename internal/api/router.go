package api

import (
	"net/http"
	"parcel-dispatch-service/internal/api/handlers"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/ports"
	"parcel-dispatch-service/internal/services"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the HTTP surface reads; Cache and Gatherer are optional.
type Deps struct {
	Store    ports.ParcelStore
	Outcome  *services.Outcome
	Cache    ports.StatusCache
	Day      time.Time
	Log      *zap.SugaredLogger
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = metrics.NewNop()
	}

	mux := http.NewServeMux()
	resolver := services.NewStatusResolver(d.Store, d.Outcome.Vehicles)

	parcelHandler := &handlers.ParcelHandler{
		Store:    d.Store,
		Resolver: resolver,
		Cache:    d.Cache,
		RunID:    d.Outcome.RunID.String(),
		Day:      d.Day,
		Metrics:  d.Metrics,
	}
	vehicleHandler := &handlers.VehicleHandler{Resolver: resolver, Day: d.Day, Metrics: d.Metrics}
	reportHandler := &handlers.ReportHandler{Resolver: resolver, Outcome: d.Outcome, Day: d.Day, Metrics: d.Metrics}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/parcels", parcelHandler.List)
	mux.HandleFunc("/parcels/{id}/status", parcelHandler.Status)
	mux.HandleFunc("/vehicles/{id}/status", vehicleHandler.Status)
	mux.HandleFunc("/report", reportHandler.Report)
	if d.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	return loggingMiddleware(d.Log, mux)
}
