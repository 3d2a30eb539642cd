package driver

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows driver listings
type Filter struct {
	Status *Status
}

// Repository defines the interface for driver data access
type Repository interface {
	// Create creates a new driver; ErrDuplicateDriver if the user already has one
	Create(ctx context.Context, driver *Driver) error

	// GetByID retrieves a driver by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)

	// GetByUserID retrieves the driver record linked to a user
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Driver, error)

	// Update writes profile, status and availability fields. Earnings are not
	// written through Update.
	Update(ctx context.Context, driver *Driver) error

	// IncrementEarnings adds amount to the accumulated earnings of the driver
	// linked to userID
	IncrementEarnings(ctx context.Context, userID uuid.UUID, amount int64) error

	// List returns drivers newest application first
	List(ctx context.Context, filter Filter) ([]*Driver, error)
}
