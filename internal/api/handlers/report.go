package handlers

import (
	"net/http"
	"parcel-dispatch-service/internal/api/dto"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/services"
	"time"
)

// ReportHandler serves the fleet-wide view plus the run summary.
type ReportHandler struct {
	Resolver *services.StatusResolver
	Outcome  *services.Outcome
	Day      time.Time
	Metrics  metrics.Recorder
}

func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	at, err := queryAt(r, h.Day)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := h.Resolver.FleetReport(at)
	h.Metrics.RecordStatusQuery("report", false)

	res := dto.ReportResponse{
		RunID:                h.Outcome.RunID.String(),
		At:                   at.Format(domain.ClockLayout),
		TotalMiles:           report.TotalMiles,
		Vehicles:             make([]dto.VehicleStatusResponse, 0, len(report.Vehicles)),
		LateParcelIDs:        h.Outcome.LateParcelIDs,
		UndeliveredParcelIDs: h.Outcome.UndeliveredParcelIDs,
	}
	for _, v := range report.Vehicles {
		res.Vehicles = append(res.Vehicles, dto.FromVehicleSnapshot(v))
	}

	writeJSON(w, r, http.StatusOK, res)
}
