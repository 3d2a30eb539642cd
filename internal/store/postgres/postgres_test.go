package postgres

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate email", &pq.Error{Code: codeUniqueViolation, Constraint: "users_email_key"}, user.ErrDuplicateEmail},
		{"duplicate driver", &pq.Error{Code: codeUniqueViolation, Constraint: "drivers_user_id_key"}, driver.ErrDuplicateDriver},
		{"active ride per rider", &pq.Error{Code: codeUniqueViolation, Constraint: "rides_one_active_per_rider"}, ride.ErrActiveRideExists},
		{"active ride per driver", &pq.Error{Code: codeUniqueViolation, Constraint: "rides_one_active_per_driver"}, ride.ErrActiveRideExists},
		{"serialization failure", &pq.Error{Code: codeSerializationFailure}, store.ErrConcurrentUpdate},
		{"deadlock", fmt.Errorf("commit: %w", &pq.Error{Code: codeDeadlockDetected}), store.ErrConcurrentUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	assert.NoError(t, mapError(nil))

	other := &pq.Error{Code: "23503", Constraint: "rides_rider_id_fkey"}
	assert.Same(t, other, mapError(other))

	unknownUnique := &pq.Error{Code: codeUniqueViolation, Constraint: "something_else"}
	assert.Same(t, unknownUnique, mapError(unknownUnique))
}

func TestNullUUID(t *testing.T) {
	assert.False(t, nullUUID(nil).Valid)

	id := uuid.New()
	got := nullUUID(&id)
	assert.True(t, got.Valid)
	assert.Equal(t, id, got.UUID)
}

func TestSchema_DeclaresConstraintsMappedByMapError(t *testing.T) {
	for _, name := range []string{
		"users_email_key",
		"drivers_user_id_key",
		"rides_one_active_per_rider",
		"rides_one_active_per_driver",
	} {
		assert.Contains(t, schema, name)
	}
}
