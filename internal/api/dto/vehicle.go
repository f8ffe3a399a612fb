package dto

type VehicleStatusResponse struct {
	VehicleID  int                    `json:"vehicle_id"`
	At         string                 `json:"at"`
	Status     string                 `json:"status"`
	DepartAt   *string                `json:"depart_at"`
	ReturnedAt *string                `json:"returned_at"`
	Miles      float64                `json:"miles"`
	Delivered  int                    `json:"delivered"`
	Remaining  int                    `json:"remaining"`
	Erroneous  int                    `json:"erroneous"`
	Parcels    []ParcelStatusResponse `json:"parcels"`
}

type ReportResponse struct {
	RunID                string                  `json:"run_id"`
	At                   string                  `json:"at"`
	TotalMiles           float64                 `json:"total_miles"`
	Vehicles             []VehicleStatusResponse `json:"vehicles"`
	LateParcelIDs        []int                   `json:"late_parcel_ids"`
	UndeliveredParcelIDs []int                   `json:"undelivered_parcel_ids"`
}
