package rides

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/service/geo"
	"github.com/gocomet/rideshare/internal/store"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

// RequestRideInput is a rider's ride request
type RequestRideInput struct {
	RiderID     uuid.UUID
	Pickup      ride.Location
	Destination ride.Location
	VehicleType string
}

// RequestRide creates a REQUESTED ride priced from the great-circle distance
func (s *Service) RequestRide(ctx context.Context, in RequestRideInput) (*ride.Ride, error) {
	var created *ride.Ride

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if err := requireActive(ctx, repos.Users, in.RiderID); err != nil {
			return err
		}

		existing, err := repos.Rides.FindActiveByRider(ctx, in.RiderID)
		if err == nil {
			return apperrors.Conflictf(
				"You already have an active ride (%s). Please complete or cancel it before requesting a new one.",
				existing.Status)
		}
		if !errors.Is(err, ride.ErrRideNotFound) {
			return err
		}

		pickup, err := normalizeLocation("Pickup", in.Pickup)
		if err != nil {
			return err
		}
		destination, err := normalizeLocation("Destination", in.Destination)
		if err != nil {
			return err
		}

		if strings.TrimSpace(in.VehicleType) == "" {
			return apperrors.InvalidInput("Vehicle type required", nil)
		}
		vehicleType, ok := driver.ParseVehicleType(in.VehicleType)
		if !ok {
			return apperrors.InvalidInputf("Invalid vehicle type '%s'. Allowed: %s",
				in.VehicleType, driver.AllowedVehicleTypes())
		}

		distance := geo.HaversineKM(pickup.Lat(), pickup.Lng(), destination.Lat(), destination.Lng())
		fare, err := s.pricing.EstimateFare(distance, vehicleType)
		if err != nil {
			return apperrors.InvalidInput("Unable to price ride", err)
		}

		now := s.now()
		rd := &ride.Ride{
			ID:                  uuid.New(),
			RiderID:             in.RiderID,
			PickupLocation:      pickup,
			DestinationLocation: destination,
			Fare:                fare,
			Distance:            distance,
			Status:              ride.StatusRequested,
			VehicleType:         vehicleType,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		rd.Timestamps.Record(ride.StatusRequested, now)

		if err := repos.Rides.Create(ctx, rd); err != nil {
			return err
		}
		created = rd
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("Ride requested",
		logger.Stringer("ride_id", created.ID),
		logger.Stringer("rider_id", created.RiderID),
		logger.String("vehicle_type", string(created.VehicleType)),
		logger.Int64("fare", created.Fare),
		logger.Float64("distance_km", created.Distance),
	)
	if s.recorder != nil {
		s.recorder.RecordRideRequested(created.ID.String(), string(created.VehicleType), created.Fare, created.Distance)
	}
	s.publish(ctx, created, "")

	return created, nil
}

func normalizeLocation(label string, loc ride.Location) (ride.Location, error) {
	name := strings.TrimSpace(loc.Name)
	if name == "" {
		return ride.Location{}, apperrors.InvalidInputf("%s location required with name", label)
	}
	if err := geo.ValidateCoordinates(loc.Lat(), loc.Lng()); err != nil {
		return ride.Location{}, apperrors.InvalidInput(
			label+" location has out-of-range coordinates; latitude must be within [-90, 90] and longitude within [-180, 180]", err)
	}
	return ride.NewLocation(loc.Lat(), loc.Lng(), name), nil
}

// UpdateRideStatus moves a ride forward on behalf of a driver. The ride, the
// driver assignment and the earnings settlement commit together or not at all.
func (s *Service) UpdateRideStatus(ctx context.Context, driverUserID, rideID uuid.UUID, target ride.Status) (*ride.Ride, error) {
	var (
		updated  *ride.Ride
		previous ride.Status
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if err := requireActive(ctx, repos.Users, driverUserID); err != nil {
			return err
		}
		rd, err := repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			return mustFind(err, ride.ErrRideNotFound, "Ride not found")
		}
		drv, err := repos.Drivers.GetByUserID(ctx, driverUserID)
		if err != nil {
			return mustFind(err, driver.ErrDriverNotFound, "Driver profile not found")
		}

		if drv.Status.BlocksRideUpdates() {
			return apperrors.Forbiddenf("Your driver status is '%s', you cannot update rides", drv.Status)
		}
		if drv.IsOffline() {
			return apperrors.Conflict("You are currently offline", nil)
		}
		if drv.VehicleType != rd.VehicleType {
			return apperrors.Conflictf(
				"Vehicle type mismatch. You are registered with '%s', but this ride requires '%s'.",
				drv.VehicleType, rd.VehicleType)
		}

		if target == ride.StatusAccepted {
			_, err := repos.Rides.FindActiveByDriver(ctx, driverUserID)
			if err == nil {
				return apperrors.Conflict("You already have an active ride", nil)
			}
			if !errors.Is(err, ride.ErrRideNotFound) {
				return err
			}
		}

		if target == ride.StatusCancelled {
			return apperrors.Forbidden("Drivers cannot cancel rides", nil)
		}
		if rd.Status == ride.StatusCancelled {
			return apperrors.Conflict("Ride has already been cancelled", nil)
		}

		if err := ride.ValidateTransition(rd.Status, target); err != nil {
			return apperrors.InvalidTransition(err.Error(), err)
		}

		if rd.HasDriver() && !rd.IsAssignedTo(driverUserID) {
			switch rd.Status {
			case ride.StatusAccepted, ride.StatusPickedUp, ride.StatusInTransit:
				return apperrors.Forbidden("You are not assigned to this ride", nil)
			}
		}

		now := s.now()
		previous = rd.Status
		rd.Timestamps.Record(target, now)
		rd.Status = target
		rd.UpdatedAt = now

		if target == ride.StatusAccepted {
			rd.AssignDriver(driverUserID)
		}

		if target == ride.StatusCompleted {
			if err := repos.Drivers.IncrementEarnings(ctx, driverUserID, rd.Fare); err != nil {
				return err
			}
		}

		if err := repos.Rides.Update(ctx, rd); err != nil {
			return err
		}
		updated = rd
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("Ride status updated",
		logger.Stringer("ride_id", updated.ID),
		logger.Stringer("driver_id", driverUserID),
		logger.String("from", string(previous)),
		logger.String("to", string(updated.Status)),
	)
	s.afterTransition(ctx, updated, previous, driverUserID)

	return updated, nil
}

func (s *Service) afterTransition(ctx context.Context, rd *ride.Ride, previous ride.Status, driverUserID uuid.UUID) {
	if s.recorder != nil {
		s.recorder.RecordRideStatusChanged(rd.ID.String(), string(previous), string(rd.Status))
		if rd.Status == ride.StatusCompleted {
			s.recorder.RecordRideCompleted(rd.ID.String(), driverUserID.String(), rd.Fare, rd.Distance)
		}
	}

	if s.tracker != nil {
		var err error
		switch rd.Status {
		case ride.StatusAccepted:
			err = s.tracker.SetCurrentRide(ctx, driverUserID, rd.ID)
		case ride.StatusCompleted:
			err = s.tracker.ClearCurrentRide(ctx, driverUserID)
		}
		if err != nil {
			s.logger.Warn("Failed to update driver current ride cache",
				logger.Stringer("ride_id", rd.ID),
				logger.Stringer("driver_id", driverUserID),
				logger.Err(err),
			)
		}
	}

	s.publish(ctx, rd, previous)
}

// CancelRide cancels a REQUESTED ride on behalf of its rider, subject to the
// daily cancellation limit
func (s *Service) CancelRide(ctx context.Context, riderID, rideID uuid.UUID, reason string) (*ride.Ride, error) {
	var cancelled *ride.Ride

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if err := requireActive(ctx, repos.Users, riderID); err != nil {
			return err
		}
		rd, err := repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			return mustFind(err, ride.ErrRideNotFound, "Ride not found")
		}

		if rd.RiderID != riderID {
			return apperrors.Unauthorized("You are not authorized to cancel this ride", nil)
		}

		switch rd.Status {
		case ride.StatusAccepted, ride.StatusCompleted, ride.StatusPickedUp, ride.StatusRejected, ride.StatusInTransit:
			return apperrors.Conflictf("Cannot cancel ride because its status is '%s'", rd.Status)
		case ride.StatusCancelled:
			return apperrors.Conflict("Ride is already cancelled", nil)
		}

		now := s.now()
		from, to := dayBounds(now, s.config.Location)
		count, err := repos.Rides.CountCancelledByRider(ctx, riderID, from, to)
		if err != nil {
			return err
		}
		if count >= s.config.MaxDailyCancellations {
			return apperrors.Conflictf("You cannot cancel more than %d rides per day", s.config.MaxDailyCancellations)
		}

		rd.Status = ride.StatusCancelled
		rd.Timestamps.Record(ride.StatusCancelled, now)
		rd.CancellationReason = strings.TrimSpace(reason)
		rd.UpdatedAt = now

		if err := repos.Rides.Update(ctx, rd); err != nil {
			return err
		}
		cancelled = rd
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("Ride cancelled",
		logger.Stringer("ride_id", cancelled.ID),
		logger.Stringer("rider_id", riderID),
		logger.String("reason", cancelled.CancellationReason),
	)
	if s.recorder != nil {
		s.recorder.RecordRideStatusChanged(cancelled.ID.String(), string(ride.StatusRequested), string(ride.StatusCancelled))
	}
	s.publish(ctx, cancelled, ride.StatusRequested)

	return cancelled, nil
}
