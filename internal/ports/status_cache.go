package ports

import (
	"context"
	"parcel-dispatch-service/internal/domain"
	"time"
)

// StatusCache memoizes resolved parcel snapshots per simulation run.
// A miss is reported with ok=false and a nil error.
type StatusCache interface {
	GetParcel(ctx context.Context, runID string, parcelID int, at time.Time) (snap domain.ParcelSnapshot, ok bool, err error)
	PutParcel(ctx context.Context, runID string, snap domain.ParcelSnapshot) error
}
