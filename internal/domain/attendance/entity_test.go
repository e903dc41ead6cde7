package attendance

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYorkPolicy(t *testing.T) Policy {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	p := DefaultPolicy()
	p.Location = loc
	return p
}

func TestPolicy_ScheduledTimesOnDSTDays(t *testing.T) {
	p := newYorkPolicy(t)

	tests := []struct {
		name string
		date time.Time
	}{
		{"spring forward", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
		{"fall back", time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"regular day", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := p.ScheduledStart(tt.date).In(p.Location)
			end := p.ScheduledEnd(tt.date).In(p.Location)

			assert.Equal(t, 8, start.Hour())
			assert.Equal(t, 0, start.Minute())
			assert.Equal(t, 17, end.Hour())
			assert.Equal(t, tt.date.Day(), start.Day())
		})
	}
}

func TestPolicy_CheckInStatusOnDSTDays(t *testing.T) {
	p := newYorkPolicy(t)

	// Setup
	springForward := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	fallBack := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	lateSpring := time.Date(2026, 3, 8, 8, 20, 0, 0, p.Location)
	onTimeFall := time.Date(2026, 11, 1, 8, 10, 0, 0, p.Location)

	// Act & Assert
	assert.Equal(t, 20, p.MinutesLate(springForward, lateSpring))
	assert.Equal(t, StatusLate, p.CheckInStatus(springForward, lateSpring))

	assert.Equal(t, 10, p.MinutesLate(fallBack, onTimeFall))
	assert.Equal(t, StatusPresent, p.CheckInStatus(fallBack, onTimeFall))
}

func TestPolicy_CheckOutLatenessOnDSTDays(t *testing.T) {
	p := newYorkPolicy(t)
	springForward := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	assert.False(t, p.IsLateCheckOut(springForward, time.Date(2026, 3, 8, 17, 10, 0, 0, p.Location)))
	assert.True(t, p.IsLateCheckOut(springForward, time.Date(2026, 3, 8, 17, 16, 0, 0, p.Location)))
}

func TestPolicy_CheckOutStatus(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, StatusLate, p.CheckOutStatus(StatusLate, 2))
	assert.Equal(t, StatusHalfDay, p.CheckOutStatus(StatusPresent, 3.99))
	assert.Equal(t, StatusPresent, p.CheckOutStatus(StatusPresent, 4))
}
