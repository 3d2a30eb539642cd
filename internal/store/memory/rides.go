package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/ride"
)

type rideRepo struct {
	st *state
}

func (r *rideRepo) Create(_ context.Context, rd *ride.Ride) error {
	if err := r.checkActiveUnique(rd); err != nil {
		return err
	}
	r.st.rides[rd.ID] = rd.Clone()
	return nil
}

func (r *rideRepo) GetByID(_ context.Context, id uuid.UUID) (*ride.Ride, error) {
	rd, ok := r.st.rides[id]
	if !ok {
		return nil, ride.ErrRideNotFound
	}
	return rd.Clone(), nil
}

func (r *rideRepo) Update(_ context.Context, rd *ride.Ride) error {
	existing, ok := r.st.rides[rd.ID]
	if !ok {
		return ride.ErrRideNotFound
	}
	if err := r.checkActiveUnique(rd); err != nil {
		return err
	}
	updated := rd.Clone()
	// fare and distance are fixed at creation
	updated.Fare = existing.Fare
	updated.Distance = existing.Distance
	r.st.rides[rd.ID] = updated
	return nil
}

// checkActiveUnique mirrors the partial unique indexes of the SQL schema
func (r *rideRepo) checkActiveUnique(rd *ride.Ride) error {
	if !rd.Status.IsActive() {
		return nil
	}
	for id, other := range r.st.rides {
		if id == rd.ID || !other.Status.IsActive() {
			continue
		}
		if other.RiderID == rd.RiderID {
			return ride.ErrActiveRideExists
		}
		if rd.DriverID != nil && other.DriverID != nil && *other.DriverID == *rd.DriverID {
			return ride.ErrActiveRideExists
		}
	}
	return nil
}

func (r *rideRepo) FindActiveByRider(_ context.Context, riderID uuid.UUID) (*ride.Ride, error) {
	return r.findActive(func(rd *ride.Ride) bool { return rd.RiderID == riderID })
}

func (r *rideRepo) FindActiveByDriver(_ context.Context, driverUserID uuid.UUID) (*ride.Ride, error) {
	return r.findActive(func(rd *ride.Ride) bool { return rd.IsAssignedTo(driverUserID) })
}

func (r *rideRepo) findActive(match func(*ride.Ride) bool) (*ride.Ride, error) {
	for _, rd := range r.st.rides {
		if rd.Status.IsActive() && match(rd) {
			return rd.Clone(), nil
		}
	}
	return nil, ride.ErrRideNotFound
}

func (r *rideRepo) CountCancelledByRider(_ context.Context, riderID uuid.UUID, from, to time.Time) (int, error) {
	n := 0
	for _, rd := range r.st.rides {
		if rd.RiderID != riderID || rd.Status != ride.StatusCancelled || rd.Timestamps.CancelledAt == nil {
			continue
		}
		at := *rd.Timestamps.CancelledAt
		if !at.Before(from) && !at.After(to) {
			n++
		}
	}
	return n, nil
}

func (r *rideRepo) ListByRider(_ context.Context, riderID uuid.UUID) ([]*ride.Ride, error) {
	out := r.collect(func(rd *ride.Ride) bool { return rd.RiderID == riderID })
	sortNewestFirst(out, func(rd *ride.Ride) time.Time { return orZero(rd.Timestamps.RequestedAt, rd.CreatedAt) })
	return out, nil
}

func (r *rideRepo) ListByDriver(_ context.Context, driverUserID uuid.UUID, filter ride.Filter) ([]*ride.Ride, error) {
	out := r.collect(func(rd *ride.Ride) bool { return rd.IsAssignedTo(driverUserID) && filter.Matches(rd) })
	sortNewestFirst(out, func(rd *ride.Ride) time.Time { return rd.CreatedAt })
	return out, nil
}

func (r *rideRepo) List(_ context.Context, filter ride.Filter) ([]*ride.Ride, error) {
	out := r.collect(filter.Matches)
	sortNewestFirst(out, func(rd *ride.Ride) time.Time { return rd.CreatedAt })
	return out, nil
}

func (r *rideRepo) ListCompletedByDriver(_ context.Context, driverUserID uuid.UUID) ([]*ride.Ride, error) {
	out := r.collect(func(rd *ride.Ride) bool {
		return rd.IsAssignedTo(driverUserID) && rd.Status == ride.StatusCompleted
	})
	sortNewestFirst(out, func(rd *ride.Ride) time.Time { return orZero(rd.Timestamps.CompletedAt, rd.UpdatedAt) })
	return out, nil
}

func (r *rideRepo) collect(match func(*ride.Ride) bool) []*ride.Ride {
	out := make([]*ride.Ride, 0)
	for _, rd := range r.st.rides {
		if match(rd) {
			out = append(out, rd.Clone())
		}
	}
	return out
}

func sortNewestFirst(rides []*ride.Ride, key func(*ride.Ride) time.Time) {
	sort.SliceStable(rides, func(i, j int) bool {
		ki, kj := key(rides[i]), key(rides[j])
		if ki.Equal(kj) {
			return rides[i].ID.String() < rides[j].ID.String()
		}
		return ki.After(kj)
	})
}

func orZero(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}
