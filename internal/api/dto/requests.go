package dto

// LocationRequest is a named point; coordinates are [latitude, longitude]
type LocationRequest struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates" binding:"required,len=2"`
	Name        string    `json:"name" binding:"required"`
}

// RequestRideRequest represents a rider asking for a ride
type RequestRideRequest struct {
	PickupLocation      LocationRequest `json:"pickup_location"`
	DestinationLocation LocationRequest `json:"destination_location"`
	VehicleType         string          `json:"vehicle_type" binding:"required"`
}

// UpdateRideStatusRequest represents a driver-side transition
type UpdateRideStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelRideRequest represents a rider cancelling a ride
type CancelRideRequest struct {
	Reason string `json:"reason"`
}

// ApplyDriverRequest represents a rider applying to drive
type ApplyDriverRequest struct {
	VehicleType   string `json:"vehicle_type" binding:"required"`
	VehicleModel  string `json:"vehicle_model" binding:"required"`
	VehicleNumber string `json:"vehicle_number" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
}

// ReviewApplicationRequest represents an admin decision
type ReviewApplicationRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAvailabilityRequest represents a driver going on or offline
type UpdateAvailabilityRequest struct {
	Availability string `json:"availability" binding:"required"`
}

// UpdateDriverProfileRequest carries optional driver fields
type UpdateDriverProfileRequest struct {
	VehicleType   *string `json:"vehicle_type"`
	VehicleModel  *string `json:"vehicle_model"`
	VehicleNumber *string `json:"vehicle_number"`
	LicenseNumber *string `json:"license_number"`
	Availability  *string `json:"availability"`
}

// RegisterUserRequest represents account registration
type RegisterUserRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateUserProfileRequest carries optional contact fields
type UpdateUserProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// SetActiveStateRequest represents an admin blocking or reactivating an account
type SetActiveStateRequest struct {
	ActiveState string `json:"active_state" binding:"required"`
}
