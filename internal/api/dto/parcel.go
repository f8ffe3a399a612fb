package dto

type ParcelResponse struct {
	ParcelID    int     `json:"parcel_id"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Deadline    string  `json:"deadline"`
	Weight      float64 `json:"weight"`
	Notes       string  `json:"notes,omitempty"`
	Status      string  `json:"status"`
	VehicleID   int     `json:"vehicle_id"`
	DeliveredAt *string `json:"delivered_at"`
}

type ListParcelsResponse struct {
	Parcels []ParcelResponse `json:"parcels"`
}

// ParcelStatusResponse is a parcel as it stood at the query time.
type ParcelStatusResponse struct {
	ParcelID    int     `json:"parcel_id"`
	At          string  `json:"at"`
	Status      string  `json:"status"`
	Address     string  `json:"address"`
	Deadline    string  `json:"deadline"`
	VehicleID   int     `json:"vehicle_id"`
	DeliveredAt *string `json:"delivered_at"`
	Late        bool    `json:"late"`
}
