package ride

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/rideshare/internal/domain/driver"
)

func TestAssignDriver_OnlyOnce(t *testing.T) {
	r := &Ride{ID: uuid.New(), Status: StatusRequested}
	first, second := uuid.New(), uuid.New()

	assert.True(t, r.AssignDriver(first))
	assert.False(t, r.AssignDriver(second))
	require.NotNil(t, r.DriverID)
	assert.Equal(t, first, *r.DriverID)
	assert.True(t, r.IsAssignedTo(first))
	assert.False(t, r.IsAssignedTo(second))
}

func TestTimestamps_RecordMapping(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	var ts Timestamps

	ts.Record(StatusAccepted, now)
	ts.Record(StatusInTransit, now.Add(time.Minute))
	ts.Record(StatusCancelled, now.Add(2*time.Minute))

	require.NotNil(t, ts.AcceptedAt)
	require.NotNil(t, ts.InTransitAt)
	require.NotNil(t, ts.CancelledAt)
	assert.Equal(t, now, *ts.AcceptedAt)
	assert.Equal(t, now.Add(time.Minute), *ts.InTransitAt)
	assert.Nil(t, ts.PickedUpAt)
	assert.Nil(t, ts.CompletedAt)
}

func TestClone_IsDeep(t *testing.T) {
	now := time.Now()
	d := uuid.New()
	r := &Ride{ID: uuid.New(), DriverID: &d, Status: StatusAccepted}
	r.Timestamps.Record(StatusAccepted, now)

	c := r.Clone()
	*c.DriverID = uuid.New()
	*c.Timestamps.AcceptedAt = now.Add(time.Hour)

	assert.Equal(t, d, *r.DriverID)
	assert.Equal(t, now, *r.Timestamps.AcceptedAt)
}

func TestFilter_Matches(t *testing.T) {
	completed := StatusCompleted
	bike := driver.VehicleBike
	r := &Ride{Status: StatusCompleted, VehicleType: driver.VehicleCar}

	assert.True(t, Filter{}.Matches(r))
	assert.True(t, Filter{Status: &completed}.Matches(r))
	assert.False(t, Filter{VehicleType: &bike}.Matches(r))
}

func TestNewLocation(t *testing.T) {
	l := NewLocation(23.8103, 90.4125, "A")

	assert.Equal(t, LocationTypePoint, l.Type)
	assert.Equal(t, 23.8103, l.Lat())
	assert.Equal(t, 90.4125, l.Lng())
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("", "")
	require.NoError(t, err)
	assert.Nil(t, f.Status)
	assert.Nil(t, f.VehicleType)

	f, err = ParseFilter(" requested ", "bike")
	require.NoError(t, err)
	require.NotNil(t, f.Status)
	require.NotNil(t, f.VehicleType)
	assert.Equal(t, StatusRequested, *f.Status)
	assert.Equal(t, driver.VehicleBike, *f.VehicleType)

	_, err = ParseFilter("LOST", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseFilter("", "boat")
	assert.ErrorIs(t, err, driver.ErrInvalidVehicleType)
}
