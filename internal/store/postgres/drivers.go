package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/driver"
)

type driverRepo struct {
	q queryer
}

const driverColumns = `id, user_id, vehicle_type, vehicle_model, vehicle_number, license_number,
	status, availability, earnings, applied_at, approved_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *driverRepo) Create(ctx context.Context, d *driver.Driver) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO drivers (`+driverColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.UserID, string(d.VehicleType), d.VehicleModel, d.VehicleNumber, d.LicenseNumber,
		string(d.Status), string(d.Availability), d.Earnings, d.AppliedAt, d.ApprovedAt, d.CreatedAt, d.UpdatedAt,
	)
	return mapError(err)
}

func (r *driverRepo) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1 FOR UPDATE`, id)
	return scanDriver(row)
}

func (r *driverRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*driver.Driver, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE user_id = $1 FOR UPDATE`, userID)
	return scanDriver(row)
}

// Update leaves earnings alone; they only move through IncrementEarnings
func (r *driverRepo) Update(ctx context.Context, d *driver.Driver) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE drivers
		SET vehicle_type = $2, vehicle_model = $3, vehicle_number = $4, license_number = $5,
		    status = $6, availability = $7, approved_at = $8, updated_at = $9
		WHERE id = $1`,
		d.ID, string(d.VehicleType), d.VehicleModel, d.VehicleNumber, d.LicenseNumber,
		string(d.Status), string(d.Availability), d.ApprovedAt, d.UpdatedAt,
	)
	return affectedOne(res, mapError(err), driver.ErrDriverNotFound)
}

func (r *driverRepo) IncrementEarnings(ctx context.Context, userID uuid.UUID, amount int64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE drivers
		SET earnings = earnings + $2, updated_at = NOW()
		WHERE user_id = $1`,
		userID, amount,
	)
	return affectedOne(res, mapError(err), driver.ErrDriverNotFound)
}

func (r *driverRepo) List(ctx context.Context, filter driver.Filter) ([]*driver.Driver, error) {
	var status sql.NullString
	if filter.Status != nil {
		status = sql.NullString{String: string(*filter.Status), Valid: true}
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY applied_at DESC`, status)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*driver.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, mapError(rows.Err())
}

func scanDriver(row rowScanner) (*driver.Driver, error) {
	var (
		d                          driver.Driver
		vehicleType, status, avail string
		approvedAt                 sql.NullTime
	)
	err := row.Scan(&d.ID, &d.UserID, &vehicleType, &d.VehicleModel, &d.VehicleNumber, &d.LicenseNumber,
		&status, &avail, &d.Earnings, &d.AppliedAt, &approvedAt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	d.VehicleType = driver.VehicleType(vehicleType)
	d.Status = driver.Status(status)
	d.Availability = driver.Availability(avail)
	d.ApprovedAt = toTimePtr(approvedAt)
	return &d, nil
}
