// Package rides is the ride lifecycle engine: ride requests, driver-side
// status transitions, rider cancellation and earnings settlement. Every
// operation runs as one unit of work against the store; side effects
// (cache, events, telemetry) run only after a successful commit.
package rides

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/service/pricing"
	"github.com/gocomet/rideshare/internal/store"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

// DefaultMaxDailyCancellations is the per-rider cancellation limit per calendar day
const DefaultMaxDailyCancellations = 3

// Tracker caches which ride a driver is serving
type Tracker interface {
	SetCurrentRide(ctx context.Context, driverUserID, rideID uuid.UUID) error
	ClearCurrentRide(ctx context.Context, driverUserID uuid.UUID) error
}

// Publisher emits ride events
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Recorder records ride telemetry
type Recorder interface {
	RecordRideRequested(rideID, vehicleType string, fare int64, distanceKM float64)
	RecordRideStatusChanged(rideID, from, to string)
	RecordRideCompleted(rideID, driverID string, fare int64, distanceKM float64)
}

// Config holds ride policy
type Config struct {
	// MaxDailyCancellations of zero means DefaultMaxDailyCancellations
	MaxDailyCancellations int
	// Location bounds the calendar day for the cancellation limit; nil means time.Local
	Location *time.Location
}

// Service handles the ride lifecycle
type Service struct {
	store     store.Store
	pricing   *pricing.Service
	logger    *logger.Logger
	config    Config
	tracker   Tracker
	publisher Publisher
	recorder  Recorder
	now       func() time.Time
}

// Option configures optional collaborators
type Option func(*Service)

// WithTracker caches the current ride per driver after commit
func WithTracker(t Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithPublisher publishes ride status events after commit
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRecorder records telemetry after commit
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new ride lifecycle service
func NewService(st store.Store, pricer *pricing.Service, log *logger.Logger, config Config, opts ...Option) *Service {
	if config.MaxDailyCancellations == 0 {
		config.MaxDailyCancellations = DefaultMaxDailyCancellations
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	s := &Service{
		store:   st,
		pricing: pricer,
		logger:  log,
		config:  config,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dayBounds returns the first and last instant of t's calendar day in loc
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// requireActive loads the caller and rejects blocked or suspended accounts
func requireActive(ctx context.Context, users user.Repository, id uuid.UUID) error {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return mustFind(err, user.ErrUserNotFound, "User not found")
	}
	if u.ActiveState.IsRestricted() {
		return apperrors.Forbiddenf("Your account is %s", u.ActiveState)
	}
	return nil
}

// mustFind maps a repository's not-found sentinel to a NotFound error
func mustFind(err error, sentinel error, message string) error {
	if errors.Is(err, sentinel) {
		return apperrors.NotFound(message, err)
	}
	return err
}

// translate turns store failures into typed errors
func translate(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, ride.ErrActiveRideExists):
		return apperrors.Conflict("An active ride already exists for this rider or driver", err)
	case errors.Is(err, store.ErrConcurrentUpdate):
		return apperrors.Conflict("The ride was changed by another request, please retry", err)
	case errors.Is(err, ride.ErrRideNotFound):
		return apperrors.NotFound("Ride not found", err)
	case errors.Is(err, user.ErrUserNotFound):
		return apperrors.NotFound("User not found", err)
	case errors.Is(err, driver.ErrDriverNotFound):
		return apperrors.NotFound("Driver not found", err)
	}
	return apperrors.Internal("Failed to process ride", err)
}
