package rides

import (
	"context"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/store"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
)

// EarningHistory summarizes a driver's completed rides
type EarningHistory struct {
	TotalRides    int          `json:"total_rides"`
	TotalEarnings int64        `json:"total_earnings"`
	Rides         []*ride.Ride `json:"rides"`
}

// ListRides returns every ride passing filter, newest first. Drivers use it to
// find REQUESTED rides to accept.
func (s *Service) ListRides(ctx context.Context, actorID uuid.UUID, filter ride.Filter) ([]*ride.Ride, error) {
	var rides []*ride.Ride
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if _, err := repos.Users.GetByID(ctx, actorID); err != nil {
			return mustFind(err, user.ErrUserNotFound, "User not found")
		}
		var err error
		rides, err = repos.Rides.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	if rides == nil {
		rides = []*ride.Ride{}
	}
	return rides, nil
}

// GetRideByID returns one of the rider's own rides
func (s *Service) GetRideByID(ctx context.Context, riderID, rideID uuid.UUID) (*ride.Ride, error) {
	var found *ride.Ride
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if _, err := repos.Users.GetByID(ctx, riderID); err != nil {
			return mustFind(err, user.ErrUserNotFound, "User not found")
		}
		rd, err := repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			return mustFind(err, ride.ErrRideNotFound, "Ride not found")
		}
		if rd.RiderID != riderID {
			return apperrors.Unauthorized("You are not authorized to view this ride", nil)
		}
		found = rd
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return found, nil
}

// RideHistory returns all of the rider's rides, newest request first
func (s *Service) RideHistory(ctx context.Context, riderID uuid.UUID) ([]*ride.Ride, error) {
	var rides []*ride.Ride
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if _, err := repos.Users.GetByID(ctx, riderID); err != nil {
			return mustFind(err, user.ErrUserNotFound, "User not found")
		}
		var err error
		rides, err = repos.Rides.ListByRider(ctx, riderID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return rides, nil
}

// ViewEarningHistory returns the driver's completed rides, newest completion
// first, with their count and fare total
func (s *Service) ViewEarningHistory(ctx context.Context, driverUserID uuid.UUID) (*EarningHistory, error) {
	history := &EarningHistory{Rides: []*ride.Ride{}}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if _, err := repos.Users.GetByID(ctx, driverUserID); err != nil {
			return mustFind(err, user.ErrUserNotFound, "User not found")
		}
		if _, err := repos.Drivers.GetByUserID(ctx, driverUserID); err != nil {
			return mustFind(err, driver.ErrDriverNotFound, "Driver not found")
		}
		rides, err := repos.Rides.ListCompletedByDriver(ctx, driverUserID)
		if err != nil {
			return err
		}
		for _, rd := range rides {
			history.TotalEarnings += rd.Fare
		}
		history.TotalRides = len(rides)
		if rides != nil {
			history.Rides = rides
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return history, nil
}
