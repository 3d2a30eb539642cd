package driver

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the driver application status
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusSuspend  Status = "SUSPEND"
)

// Availability represents whether the driver takes rides right now
type Availability string

const (
	AvailabilityAvailable   Availability = "AVAILABLE"
	AvailabilityUnavailable Availability = "UNAVAILABLE"
	AvailabilityOnTrip      Availability = "ON_TRIP"
)

// VehicleType represents the type of vehicle
type VehicleType string

const (
	VehicleCar  VehicleType = "CAR"
	VehicleBike VehicleType = "BIKE"
)

// VehicleTypes lists every recognized vehicle class in display order
var VehicleTypes = []VehicleType{VehicleCar, VehicleBike}

// Driver is the one-to-one driving extension of a user
type Driver struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	VehicleType   VehicleType  `json:"vehicle_type"`
	VehicleModel  string       `json:"vehicle_model"`
	VehicleNumber string       `json:"vehicle_number"`
	LicenseNumber string       `json:"license_number"`
	Status        Status       `json:"status"`
	Availability  Availability `json:"availability"`
	Earnings      int64        `json:"earnings"`
	AppliedAt     time.Time    `json:"applied_at"`
	ApprovedAt    *time.Time   `json:"approved_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// IsValid validates the application status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSuspend:
		return true
	}
	return false
}

// BlocksRideUpdates reports whether a driver in this status is barred from
// touching rides
func (s Status) BlocksRideUpdates() bool {
	switch s {
	case StatusPending, StatusRejected, StatusSuspend:
		return true
	}
	return false
}

// IsValid validates the availability
func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityOnTrip:
		return true
	}
	return false
}

// IsValid validates the vehicle type
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleCar, VehicleBike:
		return true
	}
	return false
}

// ParseVehicleType normalizes case before validating
func ParseVehicleType(s string) (VehicleType, bool) {
	v := VehicleType(strings.ToUpper(strings.TrimSpace(s)))
	return v, v.IsValid()
}

// AllowedVehicleTypes renders the recognized classes for error messages
func AllowedVehicleTypes() string {
	names := make([]string, len(VehicleTypes))
	for i, v := range VehicleTypes {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// IsApproved reports whether the application has been approved
func (d *Driver) IsApproved() bool {
	return d.Status == StatusApproved
}

// CanChangeAvailability returns true if the driver may go on or offline
func (d *Driver) CanChangeAvailability() bool {
	return d.Status == StatusApproved
}

// IsOffline returns true if the driver has switched off
func (d *Driver) IsOffline() bool {
	return d.Availability == AvailabilityUnavailable
}

// SetAvailability updates the driver's availability
func (d *Driver) SetAvailability(a Availability, now time.Time) error {
	if !a.IsValid() {
		return ErrInvalidAvailability
	}
	d.Availability = a
	d.UpdatedAt = now
	return nil
}

// Clone returns a deep copy
func (d *Driver) Clone() *Driver {
	c := *d
	if d.ApprovedAt != nil {
		t := *d.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}
