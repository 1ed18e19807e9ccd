package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDueAt(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Monday June 15 2026, 09:30 Eastern
	now := time.Date(2026, time.June, 15, 9, 30, 0, 0, loc)

	tests := []struct {
		name     string
		schedule Schedule
		expected bool
	}{
		{"once matching date and time", Schedule{Type: ScheduleTypeOnce, Day: "2026-06-15", Time: "09:30"}, true},
		{"once wrong minute", Schedule{Type: ScheduleTypeOnce, Day: "2026-06-15", Time: "09:31"}, false},
		{"once wrong date", Schedule{Type: ScheduleTypeOnce, Day: "2026-06-16", Time: "09:30"}, false},
		{"weekly matching weekday", Schedule{Type: ScheduleTypeWeekly, Day: "Monday", Time: "09:30"}, true},
		{"weekly wrong weekday", Schedule{Type: ScheduleTypeWeekly, Day: "Tuesday", Time: "09:30"}, false},
		{"weekly case sensitive day name", Schedule{Type: ScheduleTypeWeekly, Day: "monday", Time: "09:30"}, false},
		{"monthly matching day", Schedule{Type: ScheduleTypeMonthly, Day: "15", Time: "09:30"}, true},
		{"monthly wrong day", Schedule{Type: ScheduleTypeMonthly, Day: "16", Time: "09:30"}, false},
		{"monthly non-numeric day", Schedule{Type: ScheduleTypeMonthly, Day: "fifteenth", Time: "09:30"}, false},
		{"unknown type never due", Schedule{Type: "hourly", Day: "15", Time: "09:30"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.schedule.DueAt(now))
		})
	}
}

func TestScheduleDueAtMinuteResolution(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := Schedule{Type: ScheduleTypeWeekly, Day: "Monday", Time: "09:30"}

	// Seconds within the minute do not matter
	assert.True(t, s.DueAt(time.Date(2026, time.June, 15, 9, 30, 59, 0, loc)))
	assert.False(t, s.DueAt(time.Date(2026, time.June, 15, 9, 29, 59, 0, loc)))
}

func TestScheduleOnceTarget(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := Schedule{Type: ScheduleTypeOnce, Day: "2026-06-15", Time: "09:30"}
	target, err := s.OnceTarget(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.June, 15, 9, 30, 0, 0, loc), target)

	bad := Schedule{Type: ScheduleTypeOnce, Day: "June 15", Time: "09:30"}
	_, err = bad.OnceTarget(loc)
	assert.Error(t, err)
}

func TestScheduleTypeScanValue(t *testing.T) {
	var st ScheduleType
	require.NoError(t, st.Scan("weekly"))
	assert.Equal(t, ScheduleTypeWeekly, st)

	require.NoError(t, st.Scan([]byte("once")))
	assert.Equal(t, ScheduleTypeOnce, st)

	v, err := ScheduleTypeMonthly.Value()
	require.NoError(t, err)
	assert.Equal(t, "monthly", v)

	_, err = ScheduleType("hourly").Value()
	assert.Error(t, err)
}
