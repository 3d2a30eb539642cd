package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
)

type rideRepo struct {
	q queryer
}

const rideColumns = `id, rider_id, driver_id,
	pickup_type, pickup_lat, pickup_lng, pickup_name,
	destination_type, destination_lat, destination_lng, destination_name,
	fare, distance, status, vehicle_type,
	requested_at, accepted_at, rejected_at, picked_up_at, in_transit_at, completed_at, cancelled_at,
	cancellation_reason, created_at, updated_at`

// activeStatuses renders ride.ActiveStatuses as an SQL IN list
var activeStatuses = func() string {
	quoted := make([]string, len(ride.ActiveStatuses))
	for i, s := range ride.ActiveStatuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}()

func (r *rideRepo) Create(ctx context.Context, rd *ride.Ride) error {
	ts := rd.Timestamps
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO rides (`+rideColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		rd.ID, rd.RiderID, nullUUID(rd.DriverID),
		rd.PickupLocation.Type, rd.PickupLocation.Lat(), rd.PickupLocation.Lng(), rd.PickupLocation.Name,
		rd.DestinationLocation.Type, rd.DestinationLocation.Lat(), rd.DestinationLocation.Lng(), rd.DestinationLocation.Name,
		rd.Fare, rd.Distance, string(rd.Status), string(rd.VehicleType),
		ts.RequestedAt, ts.AcceptedAt, ts.RejectedAt, ts.PickedUpAt, ts.InTransitAt, ts.CompletedAt, ts.CancelledAt,
		rd.CancellationReason, rd.CreatedAt, rd.UpdatedAt,
	)
	return mapError(err)
}

func (r *rideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1 FOR UPDATE`, id)
	return scanRide(row)
}

// Update writes status, driver, timestamps and cancellation reason. Fare and
// distance are fixed at request time.
func (r *rideRepo) Update(ctx context.Context, rd *ride.Ride) error {
	ts := rd.Timestamps
	res, err := r.q.ExecContext(ctx, `
		UPDATE rides
		SET driver_id = $2, status = $3,
		    requested_at = $4, accepted_at = $5, rejected_at = $6, picked_up_at = $7,
		    in_transit_at = $8, completed_at = $9, cancelled_at = $10,
		    cancellation_reason = $11, updated_at = $12
		WHERE id = $1`,
		rd.ID, nullUUID(rd.DriverID), string(rd.Status),
		ts.RequestedAt, ts.AcceptedAt, ts.RejectedAt, ts.PickedUpAt,
		ts.InTransitAt, ts.CompletedAt, ts.CancelledAt,
		rd.CancellationReason, rd.UpdatedAt,
	)
	return affectedOne(res, mapError(err), ride.ErrRideNotFound)
}

func (r *rideRepo) FindActiveByRider(ctx context.Context, riderID uuid.UUID) (*ride.Ride, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE rider_id = $1 AND status IN `+activeStatuses+`
		LIMIT 1 FOR UPDATE`, riderID)
	return scanRide(row)
}

func (r *rideRepo) FindActiveByDriver(ctx context.Context, driverUserID uuid.UUID) (*ride.Ride, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE driver_id = $1 AND status IN `+activeStatuses+`
		LIMIT 1 FOR UPDATE`, driverUserID)
	return scanRide(row)
}

func (r *rideRepo) CountCancelledByRider(ctx context.Context, riderID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rides
		WHERE rider_id = $1 AND status = 'CANCELLED'
		  AND cancelled_at >= $2 AND cancelled_at <= $3`,
		riderID, from, to,
	).Scan(&n)
	return n, mapError(err)
}

func (r *rideRepo) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*ride.Ride, error) {
	return r.list(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE rider_id = $1
		ORDER BY requested_at DESC NULLS LAST`, riderID)
}

func (r *rideRepo) ListByDriver(ctx context.Context, driverUserID uuid.UUID, filter ride.Filter) ([]*ride.Ride, error) {
	status, vehicleType := filterArgs(filter)
	return r.list(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE driver_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR vehicle_type = $3)
		ORDER BY created_at DESC`, driverUserID, status, vehicleType)
}

func (r *rideRepo) List(ctx context.Context, filter ride.Filter) ([]*ride.Ride, error) {
	status, vehicleType := filterArgs(filter)
	return r.list(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR vehicle_type = $2)
		ORDER BY created_at DESC`, status, vehicleType)
}

func (r *rideRepo) ListCompletedByDriver(ctx context.Context, driverUserID uuid.UUID) ([]*ride.Ride, error) {
	return r.list(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE driver_id = $1 AND status = 'COMPLETED'
		ORDER BY completed_at DESC`, driverUserID)
}

func (r *rideRepo) list(ctx context.Context, query string, args ...any) ([]*ride.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*ride.Ride
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, mapError(rows.Err())
}

func filterArgs(filter ride.Filter) (status, vehicleType sql.NullString) {
	if filter.Status != nil {
		status = sql.NullString{String: string(*filter.Status), Valid: true}
	}
	if filter.VehicleType != nil {
		vehicleType = sql.NullString{String: string(*filter.VehicleType), Valid: true}
	}
	return status, vehicleType
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var (
		rd                  ride.Ride
		driverID            uuid.NullUUID
		pLat, pLng          float64
		dLat, dLng          float64
		status, vehicleType string
		requested, accepted sql.NullTime
		rejected, pickedUp  sql.NullTime
		inTransit, complete sql.NullTime
		cancelled           sql.NullTime
	)
	err := row.Scan(&rd.ID, &rd.RiderID, &driverID,
		&rd.PickupLocation.Type, &pLat, &pLng, &rd.PickupLocation.Name,
		&rd.DestinationLocation.Type, &dLat, &dLng, &rd.DestinationLocation.Name,
		&rd.Fare, &rd.Distance, &status, &vehicleType,
		&requested, &accepted, &rejected, &pickedUp, &inTransit, &complete, &cancelled,
		&rd.CancellationReason, &rd.CreatedAt, &rd.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ride.ErrRideNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}

	if driverID.Valid {
		id := driverID.UUID
		rd.DriverID = &id
	}
	rd.PickupLocation.Coordinates = [2]float64{pLat, pLng}
	rd.DestinationLocation.Coordinates = [2]float64{dLat, dLng}
	rd.Status = ride.Status(status)
	rd.VehicleType = driver.VehicleType(vehicleType)
	rd.Timestamps = ride.Timestamps{
		RequestedAt: toTimePtr(requested),
		AcceptedAt:  toTimePtr(accepted),
		RejectedAt:  toTimePtr(rejected),
		PickedUpAt:  toTimePtr(pickedUp),
		InTransitAt: toTimePtr(inTransit),
		CompletedAt: toTimePtr(complete),
		CancelledAt: toTimePtr(cancelled),
	}
	return &rd, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func toTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
