package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ ports.StatusCache = (*RedisStatusCache)(nil)

const defaultTTL = 15 * time.Minute

// RedisStatusCache stores resolved parcel snapshots keyed by run, parcel, and query minute.
type RedisStatusCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStatusCache{Client: client, TTL: ttl}
}

type snapshotRecord struct {
	ParcelID    int        `json:"parcel_id"`
	VehicleID   int        `json:"vehicle_id"`
	At          time.Time  `json:"at"`
	Status      string     `json:"status"`
	Address     string     `json:"address"`
	Deadline    time.Time  `json:"deadline"`
	EndOfDay    bool       `json:"end_of_day"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Late        bool       `json:"late"`
}

// key truncates to the minute; status queries are answered at minute resolution.
func key(runID string, parcelID int, at time.Time) string {
	return fmt.Sprintf("status:%s:%d:%d", runID, parcelID, at.Truncate(time.Minute).Unix())
}

func (c *RedisStatusCache) GetParcel(
	ctx context.Context,
	runID string,
	parcelID int,
	at time.Time,
) (domain.ParcelSnapshot, bool, error) {
	if c.Client == nil {
		return domain.ParcelSnapshot{}, false, errors.New("status cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, key(runID, parcelID, at)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ParcelSnapshot{}, false, nil
	}
	if err != nil {
		return domain.ParcelSnapshot{}, false, fmt.Errorf("status cache: get parcel %d: %w", parcelID, err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ParcelSnapshot{}, false, fmt.Errorf("status cache: decode parcel %d: %w", parcelID, err)
	}

	return domain.ParcelSnapshot{
		ParcelID:    rec.ParcelID,
		VehicleID:   rec.VehicleID,
		At:          rec.At,
		Status:      domain.ParcelStatus(rec.Status),
		Address:     rec.Address,
		Deadline:    domain.Deadline{At: rec.Deadline, EndOfDay: rec.EndOfDay},
		DeliveredAt: rec.DeliveredAt,
		Late:        rec.Late,
	}, true, nil
}

func (c *RedisStatusCache) PutParcel(ctx context.Context, runID string, snap domain.ParcelSnapshot) error {
	if c.Client == nil {
		return errors.New("status cache: client is nil")
	}

	raw, err := json.Marshal(snapshotRecord{
		ParcelID:    snap.ParcelID,
		VehicleID:   snap.VehicleID,
		At:          snap.At,
		Status:      string(snap.Status),
		Address:     snap.Address,
		Deadline:    snap.Deadline.At,
		EndOfDay:    snap.Deadline.EndOfDay,
		DeliveredAt: snap.DeliveredAt,
		Late:        snap.Late,
	})
	if err != nil {
		return fmt.Errorf("status cache: encode parcel %d: %w", snap.ParcelID, err)
	}

	if err := c.Client.Set(ctx, key(runID, snap.ParcelID, snap.At), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("status cache: put parcel %d: %w", snap.ParcelID, err)
	}
	return nil
}
