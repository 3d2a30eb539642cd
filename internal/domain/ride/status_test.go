package ride

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_FlowTable(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusRequested, StatusAccepted, true},
		{StatusRequested, StatusRejected, true},
		{StatusAccepted, StatusPickedUp, true},
		{StatusPickedUp, StatusInTransit, true},
		{StatusInTransit, StatusCompleted, true},

		{StatusRequested, StatusCompleted, false},
		{StatusRequested, StatusCancelled, false},
		{StatusRequested, StatusPickedUp, false},
		{StatusAccepted, StatusRequested, false},
		{StatusAccepted, StatusInTransit, false},
		{StatusPickedUp, StatusCompleted, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusRejected, StatusAccepted, false},
		{StatusCancelled, StatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusRejected, StatusCancelled} {
		assert.True(t, s.IsTerminal(), s)
		assert.Empty(t, NextStatuses(s))
	}
	for _, s := range ActiveStatuses {
		assert.True(t, s.IsActive(), s)
		assert.False(t, s.IsTerminal(), s)
	}
	assert.False(t, StatusCompleted.IsActive())
}

func TestNextStatuses_ReturnsCopy(t *testing.T) {
	next := NextStatuses(StatusRequested)
	next[0] = StatusCompleted

	assert.Equal(t, []Status{StatusAccepted, StatusRejected}, NextStatuses(StatusRequested))
}

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t,
		[]Status{StatusRequested, StatusAccepted, StatusPickedUp, StatusInTransit, StatusCompleted},
		CanonicalPath())
	assert.Equal(t, "REQUESTED → ACCEPTED → PICKED_UP → IN_TRANSIT → COMPLETED", CanonicalPathString())
}

func TestValidateTransition_ReportsPath(t *testing.T) {
	err := ValidateTransition(StatusRequested, StatusCompleted)

	var te *TransitionError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, StatusRequested, te.From)
	assert.Equal(t, StatusCompleted, te.To)
	assert.Contains(t, err.Error(), "'REQUESTED' to 'COMPLETED'")
	assert.Contains(t, err.Error(), CanonicalPathString())

	assert.NoError(t, ValidateTransition(StatusAccepted, StatusPickedUp))
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusInTransit.IsValid())
	assert.False(t, Status("DRIVER_FOUND").IsValid())
}
