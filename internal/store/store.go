// Package store defines the transactional boundary the services run in.
package store

import (
	"context"
	"errors"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/domain/user"
)

// ErrConcurrentUpdate is returned when the store aborts a unit of work
// because a concurrent one touched the same records
var ErrConcurrentUpdate = errors.New("concurrent update, retry the request")

// Repos are the repositories bound to one unit of work
type Repos struct {
	Users   user.Repository
	Drivers driver.Repository
	Rides   ride.Repository
}

// Store runs units of work atomically. fn's writes are committed together
// when it returns nil and discarded otherwise, including when fn panics.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
