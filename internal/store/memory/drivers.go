package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
)

type driverRepo struct {
	st *state
}

func (r *driverRepo) Create(_ context.Context, d *driver.Driver) error {
	for _, existing := range r.st.drivers {
		if existing.UserID == d.UserID {
			return driver.ErrDuplicateDriver
		}
	}
	r.st.drivers[d.ID] = d.Clone()
	return nil
}

func (r *driverRepo) GetByID(_ context.Context, id uuid.UUID) (*driver.Driver, error) {
	d, ok := r.st.drivers[id]
	if !ok {
		return nil, driver.ErrDriverNotFound
	}
	return d.Clone(), nil
}

func (r *driverRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*driver.Driver, error) {
	d := r.byUser(userID)
	if d == nil {
		return nil, driver.ErrDriverNotFound
	}
	return d.Clone(), nil
}

func (r *driverRepo) Update(_ context.Context, d *driver.Driver) error {
	existing, ok := r.st.drivers[d.ID]
	if !ok {
		return driver.ErrDriverNotFound
	}
	updated := d.Clone()
	updated.Earnings = existing.Earnings
	r.st.drivers[d.ID] = updated
	return nil
}

func (r *driverRepo) IncrementEarnings(_ context.Context, userID uuid.UUID, amount int64) error {
	d := r.byUser(userID)
	if d == nil {
		return driver.ErrDriverNotFound
	}
	d.Earnings += amount
	return nil
}

func (r *driverRepo) List(_ context.Context, filter driver.Filter) ([]*driver.Driver, error) {
	out := make([]*driver.Driver, 0, len(r.st.drivers))
	for _, d := range r.st.drivers {
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppliedAt.After(out[j].AppliedAt)
	})
	return out, nil
}

func (r *driverRepo) byUser(userID uuid.UUID) *driver.Driver {
	for _, d := range r.st.drivers {
		if d.UserID == userID {
			return d
		}
	}
	return nil
}
