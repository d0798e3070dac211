package slotgrid

import (
	"encoding/json"
	"time"
)

// DaysPerWeek is the number of columns of a week grid, Monday first.
const DaysPerWeek = 7

// MondayOf returns midnight of the Monday of t's week in loc.
func MondayOf(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekInput is everything BuildWeek needs. Appointments should cover at least
// the requested week; extra ones are ignored.
type WeekInput struct {
	WeekStart    time.Time
	Rules        []WeeklyAvailabilityRule
	Appointments []Appointment
	Selection    Selection
	Role         Role
	Now          time.Time
	Location     *time.Location
}

// Window is a resolved working window for one day.
type Window struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Slot is one classified cell of a day column.
type Slot struct {
	Time Clock `json:"time"`
	Classification
}

// Day is one column of the week.
type Day struct {
	Date    time.Time
	Weekday time.Weekday
	Window  *Window
	Slots   []Slot
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date    string  `json:"date"`
		Weekday int     `json:"weekday"`
		Name    string  `json:"weekday_name"`
		Window  *Window `json:"window"`
		Slots   []Slot  `json:"slots"`
	}{
		Date:    d.Date.Format(time.DateOnly),
		Weekday: int(d.Weekday),
		Name:    d.Weekday.String(),
		Window:  d.Window,
		Slots:   d.Slots,
	})
}

// WeekGrid is the rendered week: a shared time axis and seven day columns.
type WeekGrid struct {
	WeekStart time.Time
	Times     []Clock
	Days      []Day
	Selection Selection
}

func (g WeekGrid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		WeekStart string         `json:"week_start"`
		Times     []Clock        `json:"times"`
		Days      []Day          `json:"days"`
		Selection *SelectionView `json:"selection"`
	}{
		WeekStart: g.WeekStart.Format(time.DateOnly),
		Times:     g.Times,
		Days:      g.Days,
		Selection: g.Selection.View(),
	})
}

// Cell returns the slot at (date, clock), if that position exists in the grid.
func (g *WeekGrid) Cell(date time.Time, clock Clock) (Slot, bool) {
	for _, d := range g.Days {
		if !SameDay(d.Date, date) {
			continue
		}
		for _, s := range d.Slots {
			if s.Time == clock {
				return s, true
			}
		}
		return Slot{}, false
	}
	return Slot{}, false
}

// BuildWeek classifies every cell of the week starting on the Monday of
// in.WeekStart. Cells outside a day's window are off hours, except that
// doctor and admin views still show an appointment booked there. The
// returned grid keeps in.Selection only if its cell renders as selected.
func BuildWeek(in WeekInput) (*WeekGrid, error) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	showBookings, err := in.Role.seesBookings()
	if err != nil {
		return nil, err
	}

	monday := MondayOf(in.WeekStart, loc)
	times := GenerateMasterGrid(in.Rules)
	idx := NewAppointmentIndex(in.Appointments, loc)

	grid := &WeekGrid{
		WeekStart: monday,
		Times:     times,
		Days:      make([]Day, 0, DaysPerWeek),
		Selection: in.Selection,
	}

	for i := 0; i < DaysPerWeek; i++ {
		date := monday.AddDate(0, 0, i)
		rule, ok := ResolveWindowForDate(in.Rules, date)

		day := Day{Date: date, Weekday: date.Weekday(), Slots: make([]Slot, 0, len(times))}
		if ok {
			day.Window = &Window{Start: rule.Start, End: rule.End}
		}

		for _, clock := range times {
			cell := Cell{Date: date, Clock: clock}
			if !IsWorkingHour(rule, ok, clock) && !(showBookings && idx.At(cell) != nil) {
				day.Slots = append(day.Slots, Slot{Time: clock, Classification: classification(StatusOffHours, false, nil)})
				continue
			}
			c, err := Classify(cell, idx, in.Selection, in.Role, in.Now)
			if err != nil {
				return nil, err
			}
			day.Slots = append(day.Slots, Slot{Time: clock, Classification: c})
		}
		grid.Days = append(grid.Days, day)
	}

	if sel, ok := grid.Selection.Cell(); ok {
		if slot, found := grid.Cell(sel.Date, sel.Clock); !found || slot.Status != StatusSelected {
			grid.Selection = NoSelection
		}
	}
	return grid, nil
}
