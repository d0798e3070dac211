package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

// All repository interfaces in one file
type (
	// AvailabilityRepository reads and replaces a doctor's weekly rules.
	AvailabilityRepository interface {
		ListByDoctor(ctx context.Context, doctorID int64) ([]slotgrid.WeeklyAvailabilityRule, error)
		ReplaceForDoctor(ctx context.Context, doctorID int64, rules []slotgrid.WeeklyAvailabilityRule) error
	}

	// AgendaRepository reads booked appointments. from and to are calendar
	// dates, both inclusive.
	AgendaRepository interface {
		ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]slotgrid.Appointment, error)
	}
)
