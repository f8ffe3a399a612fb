package ports

import "parcel-dispatch-service/internal/domain"

// ParcelStore is the in-run mapping from parcel ID to parcel record.
type ParcelStore interface {
	Get(id int) (*domain.Parcel, bool)
	Put(p *domain.Parcel)
	// All returns every parcel ordered by ID.
	All() []*domain.Parcel
	Len() int
}
