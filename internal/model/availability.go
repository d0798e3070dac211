package model

import (
	"fmt"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

// AvailabilityRuleRow is a row of availability_rules. DayOfWeek uses the
// backend numbering (0 = Monday).
type AvailabilityRuleRow struct {
	ID              int64  `db:"id"`
	DoctorID        int64  `db:"doctor_id"`
	DayOfWeek       int    `db:"day_of_week"`
	StartTime       string `db:"start_time"`
	EndTime         string `db:"end_time"`
	SlotDurationMin int    `db:"slot_duration_min"`
}

// Rule converts the row, translating the backend day number.
func (r AvailabilityRuleRow) Rule() (slotgrid.WeeklyAvailabilityRule, error) {
	day, err := slotgrid.FromBackendDay(r.DayOfWeek)
	if err != nil {
		return slotgrid.WeeklyAvailabilityRule{}, fmt.Errorf("rule %d: %w", r.ID, err)
	}
	start, err := slotgrid.ParseClock(r.StartTime)
	if err != nil {
		return slotgrid.WeeklyAvailabilityRule{}, fmt.Errorf("rule %d start: %w", r.ID, err)
	}
	end, err := slotgrid.ParseClock(r.EndTime)
	if err != nil {
		return slotgrid.WeeklyAvailabilityRule{}, fmt.Errorf("rule %d end: %w", r.ID, err)
	}
	return slotgrid.WeeklyAvailabilityRule{
		Day:                 day,
		Start:               start,
		End:                 end,
		SlotDurationMinutes: r.SlotDurationMin,
	}, nil
}

// NewAvailabilityRuleRow builds the row stored for rule.
func NewAvailabilityRuleRow(doctorID int64, rule slotgrid.WeeklyAvailabilityRule) AvailabilityRuleRow {
	duration := rule.SlotDurationMinutes
	if duration <= 0 {
		duration = slotgrid.DefaultSlotDurationMinutes
	}
	return AvailabilityRuleRow{
		DoctorID:        doctorID,
		DayOfWeek:       slotgrid.ToBackendDay(rule.Day),
		StartTime:       rule.Start.String(),
		EndTime:         rule.End.String(),
		SlotDurationMin: duration,
	}
}

// AvailabilityRuleRequest is one rule in a replace request. DayOfWeek uses
// Go's numbering (0 = Sunday).
type AvailabilityRuleRequest struct {
	DayOfWeek       *int   `json:"day_of_week" binding:"required,weekday"`
	StartTime       string `json:"start_time" binding:"required,hhmm"`
	EndTime         string `json:"end_time" binding:"required,hhmm"`
	SlotDurationMin int    `json:"slot_duration_min" binding:"omitempty,gt=0,max=480"`
}

// ToRules converts a validated request body.
func ToRules(reqs []AvailabilityRuleRequest) ([]slotgrid.WeeklyAvailabilityRule, error) {
	rules := make([]slotgrid.WeeklyAvailabilityRule, 0, len(reqs))
	for i, r := range reqs {
		if r.DayOfWeek == nil {
			return nil, fmt.Errorf("rule %d: %w", i, slotgrid.ErrInvalidWeekday)
		}
		start, err := slotgrid.ParseClock(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		end, err := slotgrid.ParseClock(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		duration := r.SlotDurationMin
		if duration == 0 {
			duration = slotgrid.DefaultSlotDurationMinutes
		}
		rules = append(rules, slotgrid.WeeklyAvailabilityRule{
			Day:                 weekdayOf(*r.DayOfWeek),
			Start:               start,
			End:                 end,
			SlotDurationMinutes: duration,
		})
	}
	return rules, nil
}
