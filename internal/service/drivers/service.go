// Package drivers runs the driver application workflow and the driver's own
// profile operations.
package drivers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/store"
	"github.com/gocomet/rideshare/pkg/broker"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

// CurrentRideReader looks up the ride a driver is serving
type CurrentRideReader interface {
	CurrentRide(ctx context.Context, driverUserID uuid.UUID) (uuid.UUID, bool, error)
}

// Publisher emits application review events
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Recorder records review telemetry
type Recorder interface {
	RecordDriverApplicationReviewed(driverID, status string)
}

// Service handles driver applications and profiles
type Service struct {
	store     store.Store
	logger    *logger.Logger
	rides     CurrentRideReader
	publisher Publisher
	recorder  Recorder
	now       func() time.Time
}

// Option configures optional collaborators
type Option func(*Service)

// WithCurrentRideReader attaches the driver current-ride cache to profile reads
func WithCurrentRideReader(r CurrentRideReader) Option {
	return func(s *Service) { s.rides = r }
}

// WithPublisher publishes application review events after commit
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRecorder records review telemetry after commit
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new driver service
func NewService(st store.Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{store: st, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyInput is a rider's application to drive
type ApplyInput struct {
	VehicleType   string
	VehicleModel  string
	VehicleNumber string
	LicenseNumber string
}

// ApplyForDriver files a PENDING application for a rider
func (s *Service) ApplyForDriver(ctx context.Context, userID uuid.UUID, role user.Role, in ApplyInput) (*driver.Driver, error) {
	if role != user.RoleRider {
		return nil, apperrors.Forbidden("You are not authorized to apply for driver", nil)
	}

	vehicleType, ok := driver.ParseVehicleType(in.VehicleType)
	if !ok {
		return nil, apperrors.InvalidInputf("Invalid vehicle type '%s'. Allowed: %s", in.VehicleType, driver.AllowedVehicleTypes())
	}
	model := strings.TrimSpace(in.VehicleModel)
	number := strings.TrimSpace(in.VehicleNumber)
	license := strings.TrimSpace(in.LicenseNumber)
	if model == "" || number == "" || license == "" {
		return nil, apperrors.InvalidInput("Vehicle model, vehicle number and license number are required", nil)
	}

	var created *driver.Driver
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		u, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return mustFind(err, user.ErrUserNotFound, "User not found")
		}
		if u.ActiveState.IsRestricted() {
			return apperrors.Forbiddenf("Your account is %s", u.ActiveState)
		}
		if !u.HasAddress() {
			return apperrors.InvalidInput("Please update your address before applying as a driver.", nil)
		}

		_, err = repos.Drivers.GetByUserID(ctx, userID)
		if err == nil {
			return apperrors.Conflict("You have already submitted a driver application", nil)
		}
		if !errors.Is(err, driver.ErrDriverNotFound) {
			return err
		}

		if u.Role == user.RoleDriver {
			return apperrors.Conflict("You have already registered as driver", nil)
		}

		now := s.now()
		d := &driver.Driver{
			ID:            uuid.New(),
			UserID:        userID,
			VehicleType:   vehicleType,
			VehicleModel:  model,
			VehicleNumber: number,
			LicenseNumber: license,
			Status:        driver.StatusPending,
			Availability:  driver.AvailabilityUnavailable,
			AppliedAt:     now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repos.Drivers.Create(ctx, d); err != nil {
			return err
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("Driver application submitted",
		logger.Stringer("driver_id", created.ID),
		logger.Stringer("user_id", userID),
		logger.String("vehicle_type", string(created.VehicleType)),
	)
	return created, nil
}

// ReviewEvent is published when an application changes status
type ReviewEvent struct {
	DriverID   uuid.UUID     `json:"driver_id"`
	UserID     uuid.UUID     `json:"user_id"`
	Status     driver.Status `json:"status"`
	Previous   driver.Status `json:"previous_status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ReviewApplication sets an application's status. Approval also promotes the
// linked user to the driver role; both writes commit together.
func (s *Service) ReviewApplication(ctx context.Context, driverID uuid.UUID, status string) (*driver.Driver, error) {
	newStatus := driver.Status(strings.ToUpper(strings.TrimSpace(status)))
	if !newStatus.IsValid() {
		return nil, apperrors.InvalidInputf("Invalid driver status '%s'", status)
	}

	var (
		reviewed *driver.Driver
		previous driver.Status
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		d, err := repos.Drivers.GetByID(ctx, driverID)
		if err != nil {
			return mustFind(err, driver.ErrDriverNotFound, "Driver application not found")
		}
		if d.Status == newStatus {
			return apperrors.Conflictf("Already %s", newStatus)
		}

		now := s.now()
		previous = d.Status
		d.Status = newStatus
		d.UpdatedAt = now

		if newStatus == driver.StatusApproved {
			d.ApprovedAt = &now
			if err := repos.Users.UpdateRole(ctx, d.UserID, user.RoleDriver); err != nil {
				return mustFind(err, user.ErrUserNotFound, "User not found")
			}
		}

		if err := repos.Drivers.Update(ctx, d); err != nil {
			return err
		}
		reviewed = d
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("Driver application reviewed",
		logger.Stringer("driver_id", reviewed.ID),
		logger.String("from", string(previous)),
		logger.String("to", string(reviewed.Status)),
	)
	if s.recorder != nil {
		s.recorder.RecordDriverApplicationReviewed(reviewed.ID.String(), string(reviewed.Status))
	}
	if s.publisher != nil {
		key := broker.DriverApplicationKey(string(reviewed.Status))
		event := ReviewEvent{
			DriverID:   reviewed.ID,
			UserID:     reviewed.UserID,
			Status:     reviewed.Status,
			Previous:   previous,
			OccurredAt: reviewed.UpdatedAt,
		}
		if err := s.publisher.Publish(ctx, key, event); err != nil {
			s.logger.Warn("Failed to publish driver application event",
				logger.Stringer("driver_id", reviewed.ID),
				logger.String("routing_key", key),
				logger.Err(err),
			)
		}
	}
	return reviewed, nil
}

// ListApplications returns driver records, optionally narrowed to one status
func (s *Service) ListApplications(ctx context.Context, status string) ([]*driver.Driver, error) {
	var filter driver.Filter
	if status != "" {
		st := driver.Status(strings.ToUpper(status))
		if !st.IsValid() {
			return nil, apperrors.InvalidInputf("Invalid driver status '%s'", status)
		}
		filter.Status = &st
	}

	var list []*driver.Driver
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		var err error
		list, err = repos.Drivers.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	if list == nil {
		list = []*driver.Driver{}
	}
	return list, nil
}

func parseAvailability(value string) (driver.Availability, bool) {
	a := driver.Availability(strings.ToUpper(strings.TrimSpace(value)))
	return a, a.IsValid()
}

// UpdateAvailability switches an approved driver on or offline
func (s *Service) UpdateAvailability(ctx context.Context, driverUserID uuid.UUID, availability string) (*driver.Driver, error) {
	a, ok := parseAvailability(availability)
	if !ok {
		return nil, apperrors.InvalidInput("Invalid availability change", driver.ErrInvalidAvailability)
	}

	var updated *driver.Driver
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		d, err := repos.Drivers.GetByUserID(ctx, driverUserID)
		if err != nil {
			return mustFind(err, driver.ErrDriverNotFound, "Driver not found")
		}
		if !d.CanChangeAvailability() {
			return apperrors.Conflict("Only approved drivers can update availability", nil)
		}
		if err := d.SetAvailability(a, s.now()); err != nil {
			return apperrors.InvalidInput("Invalid availability change", err)
		}
		if err := repos.Drivers.Update(ctx, d); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("Driver availability updated",
		logger.Stringer("driver_id", updated.ID),
		logger.String("availability", string(updated.Availability)),
	)
	return updated, nil
}

// ProfileUpdate holds the optional fields a driver may change. Nil and empty
// values are left untouched.
type ProfileUpdate struct {
	VehicleType   *string
	VehicleModel  *string
	VehicleNumber *string
	LicenseNumber *string
	Availability  *string
}

// UpdateOwnProfile merges the provided fields into the driver's record
func (s *Service) UpdateOwnProfile(ctx context.Context, driverUserID uuid.UUID, in ProfileUpdate) (*driver.Driver, error) {
	var updated *driver.Driver
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		d, err := repos.Drivers.GetByUserID(ctx, driverUserID)
		if err != nil {
			return mustFind(err, driver.ErrDriverNotFound, "Driver profile not found")
		}

		if v := provided(in.VehicleType); v != "" {
			vt, ok := driver.ParseVehicleType(v)
			if !ok {
				return apperrors.InvalidInputf("Invalid vehicle type '%s'. Allowed: %s", v, driver.AllowedVehicleTypes())
			}
			d.VehicleType = vt
		}
		if v := provided(in.VehicleModel); v != "" {
			d.VehicleModel = v
		}
		if v := provided(in.VehicleNumber); v != "" {
			d.VehicleNumber = v
		}
		if v := provided(in.LicenseNumber); v != "" {
			d.LicenseNumber = v
		}
		if v := provided(in.Availability); v != "" {
			a, ok := parseAvailability(v)
			if !ok {
				return apperrors.InvalidInput("Invalid availability value", driver.ErrInvalidAvailability)
			}
			d.Availability = a
		}
		d.UpdatedAt = s.now()

		if err := repos.Drivers.Update(ctx, d); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

func provided(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Profile is the driver's own view of their record
type Profile struct {
	Driver        *driver.Driver `json:"driver"`
	User          *user.User     `json:"user"`
	CurrentRideID *uuid.UUID     `json:"current_ride_id,omitempty"`
}

// GetMyProfile returns the driver record with its linked user
func (s *Service) GetMyProfile(ctx context.Context, driverUserID uuid.UUID) (*Profile, error) {
	profile := &Profile{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		d, err := repos.Drivers.GetByUserID(ctx, driverUserID)
		if err != nil {
			return mustFind(err, driver.ErrDriverNotFound, "Driver profile not found")
		}
		u, err := repos.Users.GetByID(ctx, driverUserID)
		if err != nil {
			return mustFind(err, user.ErrUserNotFound, "User not found")
		}
		profile.Driver, profile.User = d, u
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	if s.rides != nil {
		id, ok, err := s.rides.CurrentRide(ctx, driverUserID)
		if err != nil {
			s.logger.Warn("Failed to read driver current ride cache",
				logger.Stringer("driver_id", driverUserID),
				logger.Err(err),
			)
		} else if ok {
			profile.CurrentRideID = &id
		}
	}
	return profile, nil
}

// RideFilter narrows a driver's ride history
type RideFilter struct {
	Status      string
	VehicleType string
}

// DriverRideHistory returns rides assigned to an approved driver, newest first
func (s *Service) DriverRideHistory(ctx context.Context, driverUserID uuid.UUID, in RideFilter) ([]*ride.Ride, error) {
	filter, err := ride.ParseFilter(in.Status, in.VehicleType)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}

	var rides []*ride.Ride
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		d, err := repos.Drivers.GetByUserID(ctx, driverUserID)
		if err != nil {
			return mustFind(err, driver.ErrDriverNotFound, "Driver profile not found")
		}
		if !d.IsApproved() {
			return apperrors.Forbidden("Only approved drivers can view ride history", nil)
		}
		rides, err = repos.Rides.ListByDriver(ctx, driverUserID, filter)
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

func mustFind(err error, sentinel error, message string) error {
	if errors.Is(err, sentinel) {
		return apperrors.NotFound(message, err)
	}
	return err
}

func translate(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, driver.ErrDuplicateDriver):
		return apperrors.Conflict("You have already submitted a driver application", err)
	case errors.Is(err, store.ErrConcurrentUpdate):
		return apperrors.Conflict("The driver record was changed by another request, please retry", err)
	case errors.Is(err, driver.ErrDriverNotFound):
		return apperrors.NotFound("Driver not found", err)
	case errors.Is(err, user.ErrUserNotFound):
		return apperrors.NotFound("User not found", err)
	}
	return apperrors.Internal("Failed to process driver request", err)
}
