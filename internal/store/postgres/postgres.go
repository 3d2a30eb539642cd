// Package postgres implements store.Store on PostgreSQL through lib/pq.
// Every unit of work runs in a serializable transaction and locks the rows it
// is about to change, so the check-then-act sequences in the services are
// race free. Partial unique indexes back the one-active-ride invariants.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/store"
)

//go:embed schema.sql
var schema string

// queryer is satisfied by *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs units of work in serializable transactions
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open connection pool
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates tables and indexes that do not exist yet
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// WithinTx commits fn's writes if it returns nil and rolls them back otherwise
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := store.Repos{
		Users:   &userRepo{q: tx},
		Drivers: &driverRepo{q: tx},
		Rides:   &rideRepo{q: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

// PostgreSQL error codes the store translates
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// mapError turns constraint and isolation failures into domain errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		switch pqErr.Constraint {
		case "users_email_key":
			return user.ErrDuplicateEmail
		case "drivers_user_id_key":
			return driver.ErrDuplicateDriver
		case "rides_one_active_per_rider", "rides_one_active_per_driver":
			return ride.ErrActiveRideExists
		}
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", store.ErrConcurrentUpdate, pqErr.Message)
	}
	return err
}
