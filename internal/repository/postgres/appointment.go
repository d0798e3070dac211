package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

const timestampLayout = "2006-01-02 15:04:05"

type agendaRepository struct {
	BaseRepository
	loc *time.Location
}

// NewAgendaRepository reads appointment timestamps as wall-clock times in loc.
func NewAgendaRepository(db *sqlx.DB, loc *time.Location, m *metrics.Metrics) repository.AgendaRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &agendaRepository{BaseRepository: NewBaseRepository(db, m), loc: loc}
}

func (r *agendaRepository) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) (appts []slotgrid.Appointment, err error) {
	defer func(start time.Time) { r.observe("agenda.list", start, err) }(time.Now())

	lower := slotgrid.StartOfDay(from, r.loc)
	upper := slotgrid.StartOfDay(to, r.loc).AddDate(0, 0, 1)

	query := `
		SELECT a.id, a.patient_id, a.doctor_id, s.name AS status_name,
		       a.start_time, a.end_time, a.reason
		FROM appointments a
		JOIN appointment_statuses s ON s.id = a.status_id
		WHERE a.doctor_id = $1
		  AND a.start_time >= $2::timestamp
		  AND a.start_time < $3::timestamp
		ORDER BY a.start_time, a.id
	`
	var rows []model.AppointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, doctorID,
		lower.Format(timestampLayout), upper.Format(timestampLayout)); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	appts = make([]slotgrid.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := row.Appointment(r.loc)
		if err != nil {
			log.Warn().Err(err).Int64("appointment_id", row.ID).Msg("Skipping appointment with unknown status")
			continue
		}
		appts = append(appts, a)
	}
	return appts, nil
}
