package slotgrid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownStatus = errors.New("unknown appointment status")

// AppointmentStatus is the lifecycle state of a booked appointment as reported
// by the booking backend.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentAttended  AppointmentStatus = "attended"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus maps the backend's status catalogue names.
func ParseAppointmentStatus(name string) (AppointmentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pendiente", "pending":
		return AppointmentPending, nil
	case "confirmado", "confirmed":
		return AppointmentConfirmed, nil
	case "realizado", "atendido", "attended":
		return AppointmentAttended, nil
	case "cancelado", "cancelled":
		return AppointmentCancelled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// Appointment is an existing booking. It occupies the single grid cell whose
// date and HH:MM match its local start time.
type Appointment struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patient_id"`
	DoctorID  int64             `json:"doctor_id"`
	Start     time.Time         `json:"start_time"`
	End       time.Time         `json:"end_time"`
	Status    AppointmentStatus `json:"status"`
	Reason    string            `json:"reason,omitempty"`
}

// Cell identifies one (day, time) position of the grid.
type Cell struct {
	Date  time.Time `json:"date"`
	Clock Clock     `json:"time"`
}

// NewCell normalises date to midnight in loc.
func NewCell(date time.Time, clock Clock, loc *time.Location) Cell {
	return Cell{Date: StartOfDay(date, loc), Clock: clock}
}

// At returns the instant the cell starts.
func (c Cell) At() time.Time {
	return c.Clock.On(c.Date)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

type cellKey struct {
	date  string
	clock Clock
}

func keyOf(date time.Time, clock Clock) cellKey {
	return cellKey{date: date.Format(time.DateOnly), clock: clock}
}

// AppointmentIndex looks appointments up by grid cell.
type AppointmentIndex struct {
	loc   *time.Location
	cells map[cellKey]*Appointment
}

// NewAppointmentIndex indexes appointments by their start in loc. When several
// appointments share a cell, a non-cancelled one is kept over cancelled ones.
func NewAppointmentIndex(appointments []Appointment, loc *time.Location) *AppointmentIndex {
	if loc == nil {
		loc = time.UTC
	}
	idx := &AppointmentIndex{loc: loc, cells: make(map[cellKey]*Appointment, len(appointments))}
	for i := range appointments {
		a := &appointments[i]
		start := a.Start.In(loc)
		k := keyOf(start, ClockOf(start))
		if prev, ok := idx.cells[k]; ok && prev.Status != AppointmentCancelled {
			continue
		}
		idx.cells[k] = a
	}
	return idx
}

// At returns the appointment occupying cell, or nil. The cell's own calendar
// date is used as is, whatever its location.
func (idx *AppointmentIndex) At(cell Cell) *Appointment {
	if idx == nil {
		return nil
	}
	return idx.cells[keyOf(cell.Date, cell.Clock)]
}

// Len returns the number of occupied cells.
func (idx *AppointmentIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.cells)
}
