package clinic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monday = "2026-10-19"

func TestDayLabel(t *testing.T) {
	day, err := DayLabel(monday)
	require.NoError(t, err)
	assert.Equal(t, "MONDAY", day)

	day, err = DayLabel("2026-10-24")
	require.NoError(t, err)
	assert.Equal(t, "SATURDAY", day)

	_, err = DayLabel("19/10/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestGenerateSlots_EndIsExclusive(t *testing.T) {
	windows := []ScheduleWindow{{EmployeeID: 1, Day: "MONDAY", Start: "09:00", End: "10:00"}}
	assert.Equal(t, []string{"09:00", "09:30"}, GenerateSlots(windows, nil, monday))
}

func TestGenerateSlots_ExactMatchBlocks(t *testing.T) {
	windows := []ScheduleWindow{{EmployeeID: 1, Day: "MONDAY", Start: "09:00", End: "10:00"}}
	appts := []Appointment{{EmployeeID: 1, Date: monday, Time: "09:30", Status: StatusPending}}
	assert.Equal(t, []string{"09:00"}, GenerateSlots(windows, appts, monday))

	// only the exact start time is taken; a 09:15 booking blocks nothing
	appts = []Appointment{{EmployeeID: 1, Date: monday, Time: "09:15", Status: StatusConfirmed}}
	assert.Equal(t, []string{"09:00", "09:30"}, GenerateSlots(windows, appts, monday))
}

func TestGenerateSlots_IgnoresCancelledAndOtherDates(t *testing.T) {
	windows := []ScheduleWindow{{EmployeeID: 1, Day: "MONDAY", Start: "09:00", End: "10:00"}}
	appts := []Appointment{
		{EmployeeID: 1, Date: monday, Time: "09:00", Status: StatusCancelled},
		{EmployeeID: 1, Date: "2026-10-26", Time: "09:30", Status: StatusPending},
	}
	assert.Equal(t, []string{"09:00", "09:30"}, GenerateSlots(windows, appts, monday))
}

func TestGenerateSlots_SortedAndStable(t *testing.T) {
	windows := []ScheduleWindow{
		{EmployeeID: 1, Day: "MONDAY", Start: "14:00", End: "15:00"},
		{EmployeeID: 1, Day: "MONDAY", Start: "08:30", End: "09:30"},
		{EmployeeID: 1, Day: "MONDAY", Start: "09:00", End: "09:30"},
	}
	appts := []Appointment{{EmployeeID: 1, Date: monday, Time: "14:30", Status: StatusPending}}

	first := GenerateSlots(windows, appts, monday)
	assert.Equal(t, []string{"08:30", "09:00", "14:00"}, first)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, GenerateSlots(windows, appts, monday))
	}
}

func TestGenerateSlots_EmptyAndMalformed(t *testing.T) {
	got := GenerateSlots(nil, nil, monday)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	windows := []ScheduleWindow{
		{EmployeeID: 1, Day: "MONDAY", Start: "nine", End: "10:00"},
		{EmployeeID: 1, Day: "MONDAY", Start: "10:00", End: "10:00"},
	}
	assert.Empty(t, GenerateSlots(windows, nil, monday))
}

func TestGenerateSlots_WindowEndingAtMidnight(t *testing.T) {
	windows := []ScheduleWindow{{EmployeeID: 1, Day: "MONDAY", Start: "22:00", End: "24:00"}}
	appts := []Appointment{{EmployeeID: 1, Date: monday, Time: "23:00", Status: StatusConfirmed}}

	assert.Equal(t, []string{"22:00", "22:30", "23:30"}, GenerateSlots(windows, appts, monday))

	// 24:00 is only meaningful as an end
	windows = []ScheduleWindow{{EmployeeID: 1, Day: "MONDAY", Start: "24:00", End: "24:00"}}
	assert.Empty(t, GenerateSlots(windows, nil, monday))
}
