package rides

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/pkg/broker"
	"github.com/gocomet/rideshare/pkg/logger"
)

// StatusEvent is published whenever a ride enters a status
type StatusEvent struct {
	RideID         uuid.UUID   `json:"ride_id"`
	RiderID        uuid.UUID   `json:"rider_id"`
	DriverID       *uuid.UUID  `json:"driver_id,omitempty"`
	Status         ride.Status `json:"status"`
	PreviousStatus ride.Status `json:"previous_status,omitempty"`
	VehicleType    string      `json:"vehicle_type"`
	Fare           int64       `json:"fare"`
	DistanceKM     float64     `json:"distance_km"`
	Reason         string      `json:"reason,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

func newStatusEvent(rd *ride.Ride, previous ride.Status) StatusEvent {
	return StatusEvent{
		RideID:         rd.ID,
		RiderID:        rd.RiderID,
		DriverID:       rd.DriverID,
		Status:         rd.Status,
		PreviousStatus: previous,
		VehicleType:    string(rd.VehicleType),
		Fare:           rd.Fare,
		DistanceKM:     rd.Distance,
		Reason:         rd.CancellationReason,
		OccurredAt:     rd.UpdatedAt,
	}
}

// publish is best effort; the ride is already committed
func (s *Service) publish(ctx context.Context, rd *ride.Ride, previous ride.Status) {
	if s.publisher == nil {
		return
	}
	key := broker.RideStatusKey(string(rd.Status))
	if err := s.publisher.Publish(ctx, key, newStatusEvent(rd, previous)); err != nil {
		s.logger.Warn("Failed to publish ride event",
			logger.Stringer("ride_id", rd.ID),
			logger.String("routing_key", key),
			logger.Err(err),
		)
	}
}
