package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/messaging"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

const (
	DefaultChannel        = "agenda.events"
	DefaultMaxAgendaRange = 62 * 24 * time.Hour
)

// Snapshot is everything needed to render one doctor's week.
type Snapshot struct {
	DoctorID     int64
	WeekStart    time.Time
	Rules        []slotgrid.WeeklyAvailabilityRule
	Appointments []slotgrid.Appointment
	LoadedAt     time.Time
}

// GridQuery selects a week of a doctor's grid.
type GridQuery struct {
	DoctorID  int64
	Week      time.Time
	Selection slotgrid.Selection
}

type Service struct {
	rules          repository.AvailabilityRepository
	agenda         repository.AgendaRepository
	publisher      messaging.Publisher
	channel        string
	loc            *time.Location
	now            func() time.Time
	maxAgendaRange time.Duration
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher publishes agenda events on channel.
func WithPublisher(p messaging.Publisher, channel string) Option {
	return func(s *Service) {
		s.publisher = p
		if channel != "" {
			s.channel = channel
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithMaxAgendaRange(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.maxAgendaRange = d
		}
	}
}

func NewService(rules repository.AvailabilityRepository, agenda repository.AgendaRepository, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		rules:          rules,
		agenda:         agenda,
		publisher:      messaging.NopPublisher{},
		channel:        DefaultChannel,
		loc:            loc,
		now:            time.Now,
		maxAgendaRange: DefaultMaxAgendaRange,
		logger:         log.With().Str("component", "schedule").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}
	return s
}

// Now returns the current time in the clinic's location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Availability(ctx context.Context, doctorID int64) ([]slotgrid.WeeklyAvailabilityRule, error) {
	if doctorID <= 0 {
		return nil, errors.BadRequest("invalid doctor id", nil)
	}
	rules, err := s.rules.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	return rules, nil
}

// ReplaceAvailability swaps a doctor's weekly rules. Only admins may do it.
func (s *Service) ReplaceAvailability(ctx context.Context, session model.Session, doctorID int64, rules []slotgrid.WeeklyAvailabilityRule) error {
	if !session.CanManageAvailability() {
		return errors.Forbidden("only administrators can change availability")
	}
	if doctorID <= 0 {
		return errors.BadRequest("invalid doctor id", nil)
	}
	if err := slotgrid.ValidateRuleSet(rules); err != nil {
		return errors.BadRequest(err.Error(), err)
	}

	if err := s.rules.ReplaceForDoctor(ctx, doctorID, rules); err != nil {
		return fmt.Errorf("failed to replace availability: %w", err)
	}

	s.logger.Info().
		Int64("doctor_id", doctorID).
		Int("rules", len(rules)).
		Str("by", session.Subject).
		Msg("Availability replaced")

	s.publish(ctx, model.EventAvailabilityChanged, doctorID)
	return nil
}

// Agenda lists the bookings of a doctor between two dates, both inclusive.
func (s *Service) Agenda(ctx context.Context, session model.Session, doctorID int64, from, to time.Time) ([]slotgrid.Appointment, error) {
	if !session.CanViewAgenda(doctorID) {
		return nil, errors.Forbidden("agenda is only visible to its doctor and administrators")
	}
	if to.Before(from) {
		return nil, errors.BadRequest("to must not be before from", nil)
	}
	if to.Sub(from) > s.maxAgendaRange {
		return nil, errors.BadRequest(fmt.Sprintf("range exceeds %d days", int(s.maxAgendaRange.Hours()/24)), nil)
	}

	appts, err := s.agenda.ListByDoctor(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load agenda: %w", err)
	}
	return appts, nil
}

// Snapshot loads the rules and the week's bookings concurrently. A failed
// fetch is returned as an error; an empty snapshot always means "no data".
func (s *Service) Snapshot(ctx context.Context, doctorID int64, week time.Time) (*Snapshot, error) {
	if doctorID <= 0 {
		return nil, errors.BadRequest("invalid doctor id", nil)
	}
	monday := slotgrid.MondayOf(week, s.loc)
	snap := &Snapshot{DoctorID: doctorID, WeekStart: monday}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rules, err := s.rules.ListByDoctor(gctx, doctorID)
		if err != nil {
			return fmt.Errorf("failed to load availability: %w", err)
		}
		snap.Rules = rules
		return nil
	})
	g.Go(func() error {
		appts, err := s.agenda.ListByDoctor(gctx, doctorID, monday, monday.AddDate(0, 0, slotgrid.DaysPerWeek-1))
		if err != nil {
			return fmt.Errorf("failed to load agenda: %w", err)
		}
		snap.Appointments = appts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.LoadedAt = s.Now()
	return snap, nil
}

// WeekGrid renders one week for the session without keeping any state.
func (s *Service) WeekGrid(ctx context.Context, session model.Session, q GridQuery) (*slotgrid.WeekGrid, error) {
	if err := authorizeGrid(session, q.DoctorID); err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(ctx, q.DoctorID, q.Week)
	if err != nil {
		return nil, err
	}

	sel := q.Selection
	if session.Role != slotgrid.RolePatient {
		sel = slotgrid.NoSelection
	}
	return s.build(snap, session.Role, sel, s.Now())
}

func (s *Service) build(snap *Snapshot, role slotgrid.Role, sel slotgrid.Selection, now time.Time) (*slotgrid.WeekGrid, error) {
	start := time.Now()
	grid, err := slotgrid.BuildWeek(slotgrid.WeekInput{
		WeekStart:    snap.WeekStart,
		Rules:        snap.Rules,
		Appointments: snap.Appointments,
		Selection:    sel,
		Role:         role,
		Now:          now,
		Location:     s.loc,
	})
	s.metrics.GridBuildDuration.Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.GridBuilds.WithLabelValues(role.String(), status).Inc()
	if err != nil {
		return nil, errors.Internal(err)
	}
	return grid, nil
}

func (s *Service) publish(ctx context.Context, typ model.EventType, doctorID int64) {
	event := model.AgendaEvent{Type: typ, DoctorID: doctorID, OccurredAt: s.Now()}
	status := "success"
	if err := s.publisher.Publish(ctx, s.channel, event); err != nil {
		status = "error"
		s.logger.Warn().Err(err).Str("type", string(typ)).Int64("doctor_id", doctorID).Msg("Failed to publish agenda event")
	}
	s.metrics.EventsPublished.WithLabelValues(string(typ), status).Inc()
}

// authorizeGrid keeps doctors out of other doctors' bookings. Patients see
// any doctor, without booking details.
func authorizeGrid(session model.Session, doctorID int64) error {
	if doctorID <= 0 {
		return errors.BadRequest("invalid doctor id", nil)
	}
	switch session.Role {
	case slotgrid.RolePatient, slotgrid.RoleAdmin:
		return nil
	case slotgrid.RoleDoctor:
		if session.IsDoctor(doctorID) {
			return nil
		}
		return errors.Forbidden("doctors can only view their own agenda")
	}
	return errors.Unauthorized(slotgrid.ErrUnknownRole)
}
