package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatusUpdate(t *testing.T) {
	accepted := map[string]AppointmentStatus{
		"scheduled": StatusScheduled,
		"cancelled": StatusRejected,
		"rejected":  StatusRejected,
		"completed": StatusCompleted,
	}
	for raw, want := range accepted {
		got, err := ParseStatusUpdate(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"pending", "Scheduled", "Canceled", "COMPLETED", ""} {
		_, err := ParseStatusUpdate(raw)
		assert.ErrorIs(t, err, ErrInvalidStatus, raw)
	}
}

func TestAppointmentStatusProcessed(t *testing.T) {
	assert.True(t, StatusScheduled.Processed())
	assert.True(t, StatusRejected.Processed())
	assert.False(t, StatusPending.Processed())
	assert.False(t, StatusCompleted.Processed())
}

func TestValidMobile(t *testing.T) {
	assert.True(t, ValidMobile("+14155550123"))
	assert.True(t, ValidMobile("9779812345678"))
	assert.False(t, ValidMobile("12345"))
	assert.False(t, ValidMobile("phone"))
}
