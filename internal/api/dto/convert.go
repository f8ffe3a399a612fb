package dto

import (
	"parcel-dispatch-service/internal/domain"
	"time"
)

func clock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.ClockLayout)
	return &s
}

func FromParcel(p *domain.Parcel) ParcelResponse {
	return ParcelResponse{
		ParcelID:    p.ParcelID,
		Address:     p.Address,
		City:        p.City,
		Zip:         p.Zip,
		Deadline:    p.Deadline.String(),
		Weight:      p.Weight,
		Notes:       p.Notes,
		Status:      string(p.Status),
		VehicleID:   p.VehicleID,
		DeliveredAt: clock(p.DeliveredAt),
	}
}

func FromParcelSnapshot(s domain.ParcelSnapshot) ParcelStatusResponse {
	return ParcelStatusResponse{
		ParcelID:    s.ParcelID,
		At:          s.At.Format(domain.ClockLayout),
		Status:      string(s.Status),
		Address:     s.Address,
		Deadline:    s.Deadline.String(),
		VehicleID:   s.VehicleID,
		DeliveredAt: clock(s.DeliveredAt),
		Late:        s.Late,
	}
}

func FromVehicleSnapshot(s domain.VehicleSnapshot) VehicleStatusResponse {
	res := VehicleStatusResponse{
		VehicleID:  s.VehicleID,
		At:         s.At.Format(domain.ClockLayout),
		Status:     string(s.Status),
		DepartAt:   clock(s.DepartAt),
		ReturnedAt: clock(s.ReturnedAt),
		Miles:      s.Miles,
		Delivered:  s.Delivered,
		Remaining:  s.Remaining,
		Erroneous:  s.Erroneous,
		Parcels:    make([]ParcelStatusResponse, 0, len(s.Parcels)),
	}
	for _, p := range s.Parcels {
		res.Parcels = append(res.Parcels, FromParcelSnapshot(p))
	}
	return res
}
