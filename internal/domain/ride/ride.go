package ride

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
)

// LocationTypePoint is the only location type marker in use
const LocationTypePoint = "Point"

// Location is a named point. Coordinates are [latitude, longitude].
type Location struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
	Name        string     `json:"name"`
}

// NewLocation builds a point location
func NewLocation(lat, lng float64, name string) Location {
	return Location{Type: LocationTypePoint, Coordinates: [2]float64{lat, lng}, Name: name}
}

// Lat returns the latitude in degrees
func (l Location) Lat() float64 { return l.Coordinates[0] }

// Lng returns the longitude in degrees
func (l Location) Lng() float64 { return l.Coordinates[1] }

// Timestamps records when the ride entered each status
type Timestamps struct {
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	InTransitAt *time.Time `json:"in_transit_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// Record stores t under the field mapped to status s
func (ts *Timestamps) Record(s Status, t time.Time) {
	switch s {
	case StatusRequested:
		ts.RequestedAt = &t
	case StatusAccepted:
		ts.AcceptedAt = &t
	case StatusRejected:
		ts.RejectedAt = &t
	case StatusPickedUp:
		ts.PickedUpAt = &t
	case StatusInTransit:
		ts.InTransitAt = &t
	case StatusCompleted:
		ts.CompletedAt = &t
	case StatusCancelled:
		ts.CancelledAt = &t
	}
}

// Ride is a trip from request to a terminal status
type Ride struct {
	ID                  uuid.UUID          `json:"id"`
	RiderID             uuid.UUID          `json:"rider_id"`
	DriverID            *uuid.UUID         `json:"driver_id"`
	PickupLocation      Location           `json:"pickup_location"`
	DestinationLocation Location           `json:"destination_location"`
	Fare                int64              `json:"fare"`
	Distance            float64            `json:"distance"`
	Status              Status             `json:"status"`
	VehicleType         driver.VehicleType `json:"vehicle_type"`
	Timestamps          Timestamps         `json:"timestamps"`
	CancellationReason  string             `json:"cancellation_reason,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Filter narrows ride listings
type Filter struct {
	Status      *Status
	VehicleType *driver.VehicleType
}

// Matches reports whether r passes the filter
func (f Filter) Matches(r *Ride) bool {
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.VehicleType != nil && r.VehicleType != *f.VehicleType {
		return false
	}
	return true
}

// ParseFilter builds a Filter from optional query values
func ParseFilter(status, vehicleType string) (Filter, error) {
	var f Filter
	if status != "" {
		st := Status(strings.ToUpper(strings.TrimSpace(status)))
		if !st.IsValid() {
			return Filter{}, fmt.Errorf("%w '%s'", ErrInvalidStatus, status)
		}
		f.Status = &st
	}
	if vehicleType != "" {
		vt, ok := driver.ParseVehicleType(vehicleType)
		if !ok {
			return Filter{}, fmt.Errorf("%w '%s', allowed: %s", driver.ErrInvalidVehicleType, vehicleType, driver.AllowedVehicleTypes())
		}
		f.VehicleType = &vt
	}
	return f, nil
}

// Repository interface
type Repository interface {
	Create(ctx context.Context, ride *Ride) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	Update(ctx context.Context, ride *Ride) error

	// FindActiveByRider returns ErrRideNotFound when the rider has no active ride
	FindActiveByRider(ctx context.Context, riderID uuid.UUID) (*Ride, error)
	// FindActiveByDriver returns ErrRideNotFound when the driver has no active ride
	FindActiveByDriver(ctx context.Context, driverUserID uuid.UUID) (*Ride, error)

	// CountCancelledByRider counts rides cancelled within [from, to]
	CountCancelledByRider(ctx context.Context, riderID uuid.UUID, from, to time.Time) (int, error)

	// ListByRider returns the rider's rides, newest request first
	ListByRider(ctx context.Context, riderID uuid.UUID) ([]*Ride, error)
	// ListByDriver returns rides assigned to the driver, newest first
	ListByDriver(ctx context.Context, driverUserID uuid.UUID, filter Filter) ([]*Ride, error)
	// List returns every ride passing filter, newest first
	List(ctx context.Context, filter Filter) ([]*Ride, error)
	// ListCompletedByDriver returns completed rides, newest completion first
	ListCompletedByDriver(ctx context.Context, driverUserID uuid.UUID) ([]*Ride, error)
}

// Errors
var (
	ErrRideNotFound     = errors.New("ride not found")
	ErrActiveRideExists = errors.New("an active ride already exists")
	ErrInvalidStatus    = errors.New("invalid ride status")
)

// HasDriver reports whether a driver has been assigned
func (r *Ride) HasDriver() bool {
	return r.DriverID != nil
}

// IsAssignedTo reports whether driverUserID is the assigned driver
func (r *Ride) IsAssignedTo(driverUserID uuid.UUID) bool {
	return r.DriverID != nil && *r.DriverID == driverUserID
}

// AssignDriver sets the driver once; later calls are ignored
func (r *Ride) AssignDriver(driverUserID uuid.UUID) bool {
	if r.DriverID != nil {
		return false
	}
	id := driverUserID
	r.DriverID = &id
	return true
}

// Clone returns a deep copy
func (r *Ride) Clone() *Ride {
	c := *r
	if r.DriverID != nil {
		id := *r.DriverID
		c.DriverID = &id
	}
	c.Timestamps = r.Timestamps.clone()
	return &c
}

func (ts Timestamps) clone() Timestamps {
	cp := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		v := *t
		return &v
	}
	return Timestamps{
		RequestedAt: cp(ts.RequestedAt),
		AcceptedAt:  cp(ts.AcceptedAt),
		RejectedAt:  cp(ts.RejectedAt),
		PickedUpAt:  cp(ts.PickedUpAt),
		InTransitAt: cp(ts.InTransitAt),
		CompletedAt: cp(ts.CompletedAt),
		CancelledAt: cp(ts.CancelledAt),
	}
}
