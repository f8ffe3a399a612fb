package handlers

import (
	"net/http"
	"parcel-dispatch-service/internal/api/dto"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"parcel-dispatch-service/internal/services"
	"time"
)

// ParcelHandler exposes parcel listing and as-of status lookups for one run.
type ParcelHandler struct {
	Store    ports.ParcelStore
	Resolver *services.StatusResolver
	// Cache is optional.
	Cache   ports.StatusCache
	RunID   string
	Day     time.Time
	Metrics metrics.Recorder
}

func (h *ParcelHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	parcels := h.Store.All()
	res := dto.ListParcelsResponse{Parcels: make([]dto.ParcelResponse, 0, len(parcels))}
	for _, p := range parcels {
		res.Parcels = append(res.Parcels, dto.FromParcel(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Status answers GET /parcels/{id}/status?at=..., reading through the cache when one is set.
func (h *ParcelHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	at, err := queryAt(r, h.Day)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	log := obs.Logger(ctx)

	if h.Cache != nil {
		snap, ok, err := h.Cache.GetParcel(ctx, h.RunID, id, at)
		if err != nil {
			log.Warnw("status cache read failed", "parcel_id", id, "err", err)
		}
		if ok {
			h.Metrics.RecordStatusQuery("parcel", true)
			writeJSON(w, r, http.StatusOK, dto.FromParcelSnapshot(snap))
			return
		}
	}

	snap, err := h.Resolver.ParcelAt(id, at)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	h.Metrics.RecordStatusQuery("parcel", false)

	if h.Cache != nil {
		if err := h.Cache.PutParcel(ctx, h.RunID, snap); err != nil {
			log.Warnw("status cache write failed", "parcel_id", id, "err", err)
		}
	}

	writeJSON(w, r, http.StatusOK, dto.FromParcelSnapshot(snap))
}
