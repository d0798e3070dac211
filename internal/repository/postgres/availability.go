package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

type availabilityRepository struct {
	BaseRepository
}

func NewAvailabilityRepository(db *sqlx.DB, m *metrics.Metrics) repository.AvailabilityRepository {
	return &availabilityRepository{BaseRepository: NewBaseRepository(db, m)}
}

func (r *availabilityRepository) ListByDoctor(ctx context.Context, doctorID int64) (rules []slotgrid.WeeklyAvailabilityRule, err error) {
	defer func(start time.Time) { r.observe("availability.list", start, err) }(time.Now())

	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time, slot_duration_min
		FROM availability_rules
		WHERE doctor_id = $1
		ORDER BY id
	`
	var rows []model.AvailabilityRuleRow
	if err := r.db.SelectContext(ctx, &rows, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list availability rules: %w", err)
	}

	rules = make([]slotgrid.WeeklyAvailabilityRule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.Rule()
		if err != nil {
			return nil, fmt.Errorf("failed to decode availability rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *availabilityRepository) ReplaceForDoctor(ctx context.Context, doctorID int64, rules []slotgrid.WeeklyAvailabilityRule) (err error) {
	defer func(start time.Time) { r.observe("availability.replace", start, err) }(time.Now())

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM availability_rules WHERE doctor_id = $1`, doctorID); err != nil {
			return fmt.Errorf("failed to clear availability rules: %w", err)
		}

		query := `
			INSERT INTO availability_rules (doctor_id, day_of_week, start_time, end_time, slot_duration_min)
			VALUES (:doctor_id, :day_of_week, :start_time, :end_time, :slot_duration_min)
		`
		for _, rule := range rules {
			row := model.NewAvailabilityRuleRow(doctorID, rule)
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				return fmt.Errorf("failed to insert availability rule: %w", err)
			}
		}
		return nil
	})
}
