package handlers

import (
	"net/http"
	"parcel-dispatch-service/internal/api/dto"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/services"
	"time"
)

type VehicleHandler struct {
	Resolver *services.StatusResolver
	Day      time.Time
	Metrics  metrics.Recorder
}

func (h *VehicleHandler) Status(w http.ResponseWriter, r *http.Request) {
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

	snap, err := h.Resolver.VehicleAt(id, at)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	h.Metrics.RecordStatusQuery("vehicle", false)

	writeJSON(w, r, http.StatusOK, dto.FromVehicleSnapshot(snap))
}
