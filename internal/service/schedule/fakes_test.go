package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

// 2024-03-04 is a Monday.
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(date time.Time, clock string) time.Time {
	return slotgrid.MustParseClock(clock).On(date)
}

func cell(date time.Time, clock string) slotgrid.Cell {
	return slotgrid.NewCell(date, slotgrid.MustParseClock(clock), time.UTC)
}

type fakeRules struct {
	mu       sync.Mutex
	rules    map[int64][]slotgrid.WeeklyAvailabilityRule
	err      error
	replaced map[int64][]slotgrid.WeeklyAvailabilityRule
}

func newFakeRules() *fakeRules {
	return &fakeRules{
		rules: map[int64][]slotgrid.WeeklyAvailabilityRule{
			7: {{Day: time.Monday, Start: slotgrid.MustParseClock("09:00"), End: slotgrid.MustParseClock("12:00"), SlotDurationMinutes: 30}},
			8: {{Day: time.Tuesday, Start: slotgrid.MustParseClock("14:00"), End: slotgrid.MustParseClock("16:00"), SlotDurationMinutes: 30}},
		},
		replaced: map[int64][]slotgrid.WeeklyAvailabilityRule{},
	}
}

func (f *fakeRules) ListByDoctor(_ context.Context, doctorID int64) ([]slotgrid.WeeklyAvailabilityRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.rules[doctorID], nil
}

func (f *fakeRules) ReplaceForDoctor(_ context.Context, doctorID int64, rules []slotgrid.WeeklyAvailabilityRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rules[doctorID] = rules
	f.replaced[doctorID] = rules
	return nil
}

type agendaCall struct {
	doctorID int64
	from, to time.Time
}

type fakeAgenda struct {
	mu    sync.Mutex
	appts map[int64][]slotgrid.Appointment
	err   error
	calls []agendaCall
}

func newFakeAgenda() *fakeAgenda {
	return &fakeAgenda{appts: map[int64][]slotgrid.Appointment{
		7: {{ID: 1, PatientID: 10, DoctorID: 7, Start: at(monday, "09:30"), End: at(monday, "10:00"), Status: slotgrid.AppointmentPending}},
	}}
}

func (f *fakeAgenda) ListByDoctor(_ context.Context, doctorID int64, from, to time.Time) ([]slotgrid.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, agendaCall{doctorID, from, to})
	if f.err != nil {
		return nil, f.err
	}
	return f.appts[doctorID], nil
}

type published struct {
	channel string
	message interface{}
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{channel, message})
	return f.err
}

// gatedLoader blocks each Snapshot call until released, so tests control the
// order in which loads finish.
type gatedLoader struct {
	mu    sync.Mutex
	next  Loader
	gates map[int64]chan struct{}
	calls map[int64]int
}

func newGatedLoader(next Loader) *gatedLoader {
	return &gatedLoader{next: next, gates: map[int64]chan struct{}{}, calls: map[int64]int{}}
}

func (g *gatedLoader) gate(doctorID int64) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[doctorID]
	if !ok {
		ch = make(chan struct{})
		g.gates[doctorID] = ch
	}
	return ch
}

func (g *gatedLoader) release(doctorID int64) {
	close(g.gate(doctorID))
}

func (g *gatedLoader) Calls(doctorID int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[doctorID]
}

// Snapshot ignores cancellation on purpose: it models a backend that answers
// late even though the caller gave up.
func (g *gatedLoader) Snapshot(ctx context.Context, doctorID int64, week time.Time) (*Snapshot, error) {
	g.mu.Lock()
	g.calls[doctorID]++
	g.mu.Unlock()

	<-g.gate(doctorID)
	return g.next.Snapshot(context.Background(), doctorID, week)
}
