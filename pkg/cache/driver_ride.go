package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DriverRideTracker caches the ride a driver is currently serving. The ride
// store stays authoritative; entries expire after ttl.
type DriverRideTracker struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewDriverRideTracker creates a tracker on top of client
func NewDriverRideTracker(client redis.Cmdable, ttl time.Duration) *DriverRideTracker {
	return &DriverRideTracker{client: client, ttl: ttl}
}

// CurrentRideKey is the key holding a driver's current ride id
func CurrentRideKey(driverUserID uuid.UUID) string {
	return fmt.Sprintf("driver:%s:current_ride", driverUserID)
}

// SetCurrentRide records rideID as the driver's current ride
func (t *DriverRideTracker) SetCurrentRide(ctx context.Context, driverUserID, rideID uuid.UUID) error {
	return t.client.Set(ctx, CurrentRideKey(driverUserID), rideID.String(), t.ttl).Err()
}

// ClearCurrentRide forgets the driver's current ride
func (t *DriverRideTracker) ClearCurrentRide(ctx context.Context, driverUserID uuid.UUID) error {
	return t.client.Del(ctx, CurrentRideKey(driverUserID)).Err()
}

// CurrentRide returns the cached ride id, or false when nothing is cached
func (t *DriverRideTracker) CurrentRide(ctx context.Context, driverUserID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := t.client.Get(ctx, CurrentRideKey(driverUserID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt current ride for driver %s: %w", driverUserID, err)
	}
	return id, true, nil
}
