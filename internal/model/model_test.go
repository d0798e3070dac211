package model

import (
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

func TestSessionClaims(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-42"},
		UserID:           42,
		Role:             "Medico",
		DoctorID:         7,
	}
	s, err := claims.Session()
	require.NoError(t, err)
	assert.Equal(t, slotgrid.RoleDoctor, s.Role)
	assert.True(t, s.CanViewAgenda(7))
	assert.False(t, s.CanViewAgenda(8))
	assert.False(t, s.CanManageAvailability())

	claims.DoctorID = 0
	_, err = claims.Session()
	assert.Error(t, err)

	admin := SessionClaims{UserID: 1, Role: "admin"}
	s, err = admin.Session()
	require.NoError(t, err)
	assert.Equal(t, "user:1", s.Subject)
	assert.True(t, s.CanViewAgenda(99))
	assert.True(t, s.CanManageAvailability())

	_, err = (&SessionClaims{Role: "nurse"}).Session()
	assert.ErrorIs(t, err, slotgrid.ErrUnknownRole)
}

func TestAvailabilityRuleRow(t *testing.T) {
	row := AvailabilityRuleRow{ID: 1, DoctorID: 3, DayOfWeek: 0, StartTime: "09:00:00", EndTime: "12:00", SlotDurationMin: 20}
	r, err := row.Rule()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, r.Day)
	assert.Equal(t, "09:00", r.Start.String())
	assert.Equal(t, 20, r.SlotDurationMinutes)

	back := NewAvailabilityRuleRow(3, r)
	assert.Equal(t, 0, back.DayOfWeek)
	assert.Equal(t, "09:00", back.StartTime)

	row.DayOfWeek = 9
	_, err = row.Rule()
	assert.ErrorIs(t, err, slotgrid.ErrInvalidWeekday)
}

func TestToRules(t *testing.T) {
	sunday := 0
	rules, err := ToRules([]AvailabilityRuleRequest{{DayOfWeek: &sunday, StartTime: "10:00", EndTime: "11:30"}})
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, time.Sunday, rules[0].Day)
	assert.Equal(t, slotgrid.DefaultSlotDurationMinutes, rules[0].SlotDurationMinutes)

	_, err = ToRules([]AvailabilityRuleRequest{{StartTime: "10:00", EndTime: "11:00"}})
	assert.Error(t, err)
}

func TestAppointmentRow(t *testing.T) {
	loc := time.FixedZone("AR", -3*60*60)
	row := AppointmentRow{
		ID:         5,
		StatusName: "Realizado",
		StartTime:  time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		Reason:     sql.NullString{String: "control", Valid: true},
	}
	a, err := row.Appointment(loc)
	require.NoError(t, err)
	assert.Equal(t, slotgrid.AppointmentAttended, a.Status)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 30, 0, 0, loc), a.Start)
	assert.Equal(t, "control", a.Reason)

	row.StatusName = "Perdido"
	_, err = row.Appointment(loc)
	assert.ErrorIs(t, err, slotgrid.ErrUnknownStatus)
}

func TestGridQuery(t *testing.T) {
	ok, err := GridQuery{}.HasSelection()
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = GridQuery{SelectedDate: "2024-03-04", SelectedTime: "09:00"}.HasSelection()
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = GridQuery{SelectedDate: "2024-03-04"}.HasSelection()
	assert.Error(t, err)
}

func TestParseCell(t *testing.T) {
	cell, err := ParseCell("2024-03-04", "09:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "09:30", cell.Clock.String())
	assert.Equal(t, time.Monday, cell.Date.Weekday())

	_, err = ParseCell("04/03/2024", "09:30", time.UTC)
	assert.Error(t, err)
	_, err = ParseCell("2024-03-04", "9", time.UTC)
	assert.Error(t, err)

	now := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)
	d, err := ParseDate("", time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), d)
}
