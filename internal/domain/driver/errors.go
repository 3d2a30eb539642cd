package driver

import "errors"

var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDuplicateDriver     = errors.New("driver profile already exists for user")
	ErrInvalidDriverStatus = errors.New("invalid driver status")
	ErrInvalidAvailability = errors.New("invalid availability")
	ErrInvalidVehicleType  = errors.New("invalid vehicle type")
)
