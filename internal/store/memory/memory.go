// Package memory is an in-process Store. Units of work are serialized behind
// one mutex and applied to a snapshot that replaces the live state on commit.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/store"
)

type state struct {
	users   map[uuid.UUID]*user.User
	drivers map[uuid.UUID]*driver.Driver
	rides   map[uuid.UUID]*ride.Ride
}

func newState() *state {
	return &state{
		users:   make(map[uuid.UUID]*user.User),
		drivers: make(map[uuid.UUID]*driver.Driver),
		rides:   make(map[uuid.UUID]*ride.Ride),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:   make(map[uuid.UUID]*user.User, len(s.users)),
		drivers: make(map[uuid.UUID]*driver.Driver, len(s.drivers)),
		rides:   make(map[uuid.UUID]*ride.Ride, len(s.rides)),
	}
	for id, u := range s.users {
		c.users[id] = u.Clone()
	}
	for id, d := range s.drivers {
		c.drivers[id] = d.Clone()
	}
	for id, r := range s.rides {
		c.rides[id] = r.Clone()
	}
	return c
}

// Store is a serializable in-memory store
type Store struct {
	mu    sync.Mutex
	state *state
}

var _ store.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{state: newState()}
}

// WithinTx runs fn against a private snapshot and publishes it on success
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.state.clone()
	repos := store.Repos{
		Users:   &userRepo{st: snap},
		Drivers: &driverRepo{st: snap},
		Rides:   &rideRepo{st: snap},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.state = snap
	return nil
}
