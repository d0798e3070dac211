package model

import (
	"database/sql"
	"time"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

// AppointmentRow is an appointment joined with its status name.
type AppointmentRow struct {
	ID         int64          `db:"id"`
	PatientID  int64          `db:"patient_id"`
	DoctorID   int64          `db:"doctor_id"`
	StatusName string         `db:"status_name"`
	StartTime  time.Time      `db:"start_time"`
	EndTime    time.Time      `db:"end_time"`
	Reason     sql.NullString `db:"reason"`
}

// Appointment converts the row. The columns hold wall-clock times without a
// zone; they are read as local times in loc.
func (r AppointmentRow) Appointment(loc *time.Location) (slotgrid.Appointment, error) {
	status, err := slotgrid.ParseAppointmentStatus(r.StatusName)
	if err != nil {
		return slotgrid.Appointment{}, err
	}
	return slotgrid.Appointment{
		ID:        r.ID,
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		Start:     wallClock(r.StartTime, loc),
		End:       wallClock(r.EndTime, loc),
		Status:    status,
		Reason:    r.Reason.String,
	}, nil
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
