package slotgrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelection_Click(t *testing.T) {
	now := MustParseClock("08:00").On(monday)
	idx := NewAppointmentIndex([]Appointment{appointmentAt(monday, "10:00", AppointmentConfirmed)}, time.UTC)

	click := func(sel Selection, cell Cell) Selection {
		c := classify(t, cell, idx, sel, RolePatient, now)
		return sel.Click(cell, c)
	}

	a := cellAt(monday, "09:00")
	b := cellAt(monday, "11:30")

	sel := click(NoSelection, a)
	assert.True(t, sel.Matches(a))
	assert.Equal(t, StatusSelected, classify(t, a, idx, sel, RolePatient, now).Status)

	sel = click(sel, a)
	assert.False(t, sel.Active())

	sel = click(click(NoSelection, a), b)
	assert.True(t, sel.Matches(b))
	assert.False(t, sel.Matches(a))
	assert.Equal(t, StatusAvailable, classify(t, a, idx, sel, RolePatient, now).Status)

	t.Run("occupied is a no-op", func(t *testing.T) {
		got := click(sel, cellAt(monday, "10:00"))
		assert.Equal(t, sel, got)
	})

	t.Run("expired is a no-op", func(t *testing.T) {
		got := click(sel, cellAt(monday, "07:30"))
		assert.Equal(t, sel, got)
	})

	t.Run("off hours is a no-op", func(t *testing.T) {
		got := sel.Click(cellAt(sunday, "09:00"), Classification{Status: StatusOffHours})
		assert.Equal(t, sel, got)
	})

	t.Run("reset", func(t *testing.T) {
		assert.False(t, sel.Reset().Active())
	})
}

func TestSelection_View(t *testing.T) {
	assert.Nil(t, NoSelection.View())

	v := Select(cellAt(monday, "09:30")).View()
	if assert.NotNil(t, v) {
		assert.Equal(t, "2024-03-04", v.Date)
		assert.Equal(t, "09:30", v.Time)
		assert.Equal(t, "04/03/2024", v.Display)
	}
}
