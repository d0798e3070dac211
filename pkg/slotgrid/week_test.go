package slotgrid

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMondayOf(t *testing.T) {
	wednesday := time.Date(2024, 3, 6, 15, 20, 0, 0, time.UTC)
	assert.Equal(t, monday, MondayOf(wednesday, time.UTC))
	assert.Equal(t, monday, MondayOf(sunday.Add(23*time.Hour), time.UTC))
	assert.Equal(t, monday, MondayOf(monday, time.UTC))
}

func TestBuildWeek(t *testing.T) {
	rules := []WeeklyAvailabilityRule{
		rule(time.Monday, "09:00", "12:00"),
		rule(time.Wednesday, "10:00", "13:00"),
	}
	appts := []Appointment{
		appointmentAt(monday, "09:30", AppointmentPending),
		// Booked outside Wednesday's window, e.g. before the rule changed.
		appointmentAt(monday.AddDate(0, 0, 2), "09:00", AppointmentConfirmed),
	}
	now := MustParseClock("09:00").On(monday)

	t.Run("patient", func(t *testing.T) {
		g, err := BuildWeek(WeekInput{
			WeekStart:    monday.AddDate(0, 0, 3),
			Rules:        rules,
			Appointments: appts,
			Role:         RolePatient,
			Now:          now,
			Location:     time.UTC,
		})
		require.NoError(t, err)

		assert.Equal(t, monday, g.WeekStart)
		require.Len(t, g.Days, DaysPerWeek)
		assert.Len(t, g.Times, 8)
		assert.Equal(t, time.Monday, g.Days[0].Weekday)
		assert.Equal(t, time.Sunday, g.Days[6].Weekday)
		assert.Nil(t, g.Days[6].Window)

		s, ok := g.Cell(monday, MustParseClock("09:30"))
		require.True(t, ok)
		assert.Equal(t, StatusOccupied, s.Status)

		s, _ = g.Cell(monday, MustParseClock("12:30"))
		assert.Equal(t, StatusOffHours, s.Status)
		assert.Equal(t, "-", s.Label)

		s, _ = g.Cell(monday.AddDate(0, 0, 2), MustParseClock("09:00"))
		assert.Equal(t, StatusOffHours, s.Status)

		for _, s := range g.Days[6].Slots {
			assert.Equal(t, StatusOffHours, s.Status)
		}
	})

	t.Run("doctor sees bookings outside the window", func(t *testing.T) {
		g, err := BuildWeek(WeekInput{
			WeekStart:    monday,
			Rules:        rules,
			Appointments: appts,
			Role:         RoleDoctor,
			Now:          now,
			Location:     time.UTC,
		})
		require.NoError(t, err)

		s, ok := g.Cell(monday.AddDate(0, 0, 2), MustParseClock("09:00"))
		require.True(t, ok)
		assert.Equal(t, StatusConfirmed, s.Status)

		s, _ = g.Cell(monday.AddDate(0, 0, 2), MustParseClock("11:00"))
		assert.Equal(t, StatusEmptyFuture, s.Status)
	})

	t.Run("no rules", func(t *testing.T) {
		g, err := BuildWeek(WeekInput{WeekStart: monday, Role: RolePatient, Now: now})
		require.NoError(t, err)
		assert.Empty(t, g.Times)
		assert.Len(t, g.Days, DaysPerWeek)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := BuildWeek(WeekInput{WeekStart: monday, Rules: rules, Now: now})
		assert.ErrorIs(t, err, ErrUnknownRole)
	})
}

func TestBuildWeek_DropsUnbookableSelection(t *testing.T) {
	rules := []WeeklyAvailabilityRule{rule(time.Monday, "09:00", "12:00")}
	appts := []Appointment{appointmentAt(monday, "10:00", AppointmentConfirmed)}
	now := MustParseClock("09:00").On(monday)

	cases := map[string]Cell{
		"occupied":  cellAt(monday, "10:00"),
		"expired":   cellAt(monday, "08:30"),
		"off hours": cellAt(monday.AddDate(0, 0, 1), "10:00"),
		"past week": cellAt(monday.AddDate(0, 0, -7), "10:00"),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			g, err := BuildWeek(WeekInput{
				WeekStart: monday, Rules: rules, Appointments: appts,
				Selection: Select(c), Role: RolePatient, Now: now, Location: time.UTC,
			})
			require.NoError(t, err)
			assert.False(t, g.Selection.Active())
		})
	}

	g, err := BuildWeek(WeekInput{
		WeekStart: monday, Rules: rules, Appointments: appts,
		Selection: Select(cellAt(monday, "11:00")), Role: RolePatient, Now: now, Location: time.UTC,
	})
	require.NoError(t, err)
	assert.True(t, g.Selection.Matches(cellAt(monday, "11:00")))
}

func TestWeekGrid_JSON(t *testing.T) {
	g, err := BuildWeek(WeekInput{
		WeekStart: monday,
		Rules:     []WeeklyAvailabilityRule{rule(time.Monday, "09:00", "10:00")},
		Selection: Select(cellAt(monday, "09:30")),
		Role:      RolePatient,
		Now:       MustParseClock("08:00").On(monday),
		Location:  time.UTC,
	})
	require.NoError(t, err)

	b, err := json.Marshal(g)
	require.NoError(t, err)

	var out struct {
		WeekStart string   `json:"week_start"`
		Times     []string `json:"times"`
		Days      []struct {
			Date   string `json:"date"`
			Window *struct {
				Start string `json:"start"`
			} `json:"window"`
			Slots []struct {
				Time   string `json:"time"`
				Status string `json:"status"`
				Label  string `json:"label"`
			} `json:"slots"`
		} `json:"days"`
		Selection *SelectionView `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, "2024-03-04", out.WeekStart)
	assert.Equal(t, []string{"09:00", "09:30"}, out.Times)
	require.Len(t, out.Days, 7)
	require.NotNil(t, out.Days[0].Window)
	assert.Equal(t, "09:00", out.Days[0].Window.Start)
	assert.Equal(t, "selected", out.Days[0].Slots[1].Status)
	assert.Equal(t, "Seleccionado", out.Days[0].Slots[1].Label)
	require.NotNil(t, out.Selection)
	assert.Equal(t, "09:30", out.Selection.Time)
}
