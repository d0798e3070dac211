package slotgrid

import (
	"fmt"
	"time"
)

// SlotStatus is the semantic state of a grid cell for one viewer.
type SlotStatus string

const (
	// Doctor and admin views.
	StatusPending     SlotStatus = "pending"
	StatusConfirmed   SlotStatus = "confirmed"
	StatusAttended    SlotStatus = "attended"
	StatusCancelled   SlotStatus = "cancelled"
	StatusEmptyPast   SlotStatus = "empty_past"
	StatusEmptyFuture SlotStatus = "empty_future"

	// Patient view.
	StatusExpired   SlotStatus = "expired"
	StatusOccupied  SlotStatus = "occupied"
	StatusSelected  SlotStatus = "selected"
	StatusAvailable SlotStatus = "available"

	// Outside the day's working window.
	StatusOffHours SlotStatus = "off_hours"
)

var labels = map[SlotStatus]string{
	StatusPending:     "Pendiente",
	StatusConfirmed:   "Confirmado",
	StatusAttended:    "Atendido",
	StatusCancelled:   "Cancelado",
	StatusEmptyPast:   "Expirado",
	StatusEmptyFuture: "Libre",
	StatusExpired:     "Expirado",
	StatusOccupied:    "Ocupado",
	StatusSelected:    "Seleccionado",
	StatusAvailable:   "Disponible",
	StatusOffHours:    "-",
}

// Label returns the display string for s.
func (s SlotStatus) Label() string {
	return labels[s]
}

// Classification is the derived status of one cell. It owns no state and is
// recomputed for every render.
type Classification struct {
	Status      SlotStatus   `json:"status"`
	Label       string       `json:"label"`
	Interactive bool         `json:"interactive"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

func classification(s SlotStatus, interactive bool, a *Appointment) Classification {
	return Classification{Status: s, Label: s.Label(), Interactive: interactive, Appointment: a}
}

func statusOfAppointment(a *Appointment) SlotStatus {
	switch a.Status {
	case AppointmentConfirmed:
		return StatusConfirmed
	case AppointmentAttended:
		return StatusAttended
	case AppointmentCancelled:
		return StatusCancelled
	default:
		return StatusPending
	}
}

// Classify returns the status of cell for the given viewer at instant now.
//
// Doctors (and admins) always see a booked appointment's own state, even in the
// past; empty cells are split into past and future. Patients see any past cell
// as expired regardless of bookings, then occupied (cancelled bookings do not
// block), then their selection, then available.
func Classify(cell Cell, idx *AppointmentIndex, sel Selection, role Role, now time.Time) (Classification, error) {
	past := cell.At().Before(now)

	switch role {
	case RoleDoctor, RoleAdmin:
		if a := idx.At(cell); a != nil {
			return classification(statusOfAppointment(a), true, a), nil
		}
		if past {
			return classification(StatusEmptyPast, false, nil), nil
		}
		return classification(StatusEmptyFuture, false, nil), nil

	case RolePatient:
		if past {
			return classification(StatusExpired, false, nil), nil
		}
		if a := idx.At(cell); a != nil && a.Status != AppointmentCancelled {
			return classification(StatusOccupied, false, nil), nil
		}
		if sel.Matches(cell) {
			return classification(StatusSelected, true, nil), nil
		}
		return classification(StatusAvailable, true, nil), nil
	}

	return Classification{}, fmt.Errorf("%w: %d", ErrUnknownRole, int(role))
}
