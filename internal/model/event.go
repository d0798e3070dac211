package model

import "time"

type EventType string

const (
	EventAvailabilityChanged EventType = "availability_changed"
	EventAgendaChanged       EventType = "agenda_changed"
)

// AgendaEvent is published on the agenda channel whenever a doctor's rules or
// bookings change. Bookings are changed by the booking backend, which
// publishes agenda_changed itself.
type AgendaEvent struct {
	Type       EventType `json:"type"`
	DoctorID   int64     `json:"doctor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
