package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/agenda-api/internal/model"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

var (
	ErrBoardLoading = errors.New("board is loading")
	ErrNoContext    = errors.New("no doctor selected")
)

// Loader fetches a snapshot. *Service implements it.
type Loader interface {
	Snapshot(ctx context.Context, doctorID int64, week time.Time) (*Snapshot, error)
}

// BoardView is what a viewer sees: the last loaded grid plus the load state.
type BoardView struct {
	DoctorID   int64              `json:"doctor_id"`
	Generation uint64             `json:"generation"`
	Loading    bool               `json:"loading"`
	Error      string             `json:"error,omitempty"`
	LoadedAt   time.Time          `json:"loaded_at"`
	Grid       *slotgrid.WeekGrid `json:"grid"`
}

// ClickResult reports the effect of a click. Patients get their new
// selection; doctors and admins get the booking under the cell, if any.
type ClickResult struct {
	Slot        slotgrid.Slot           `json:"slot"`
	Selection   *slotgrid.SelectionView `json:"selection"`
	Appointment *slotgrid.Appointment   `json:"appointment,omitempty"`
}

// Board is one viewer's interactive grid. Every context change or refresh
// starts a load under a new generation and cancels the previous one; a load
// that completes under an older generation is discarded, so a slow response
// for a doctor the viewer already left never overwrites the current one.
type Board struct {
	session model.Session
	loader  Loader
	loc     *time.Location
	timeout time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu         sync.Mutex
	doctorID   int64
	week       time.Time
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	loading    bool
	snapshot   *Snapshot
	loadErr    error
	selection  slotgrid.Selection
	closed     bool
}

func newBoard(session model.Session, loader Loader, loc *time.Location, timeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Board {
	done := make(chan struct{})
	close(done)
	return &Board{
		session: session,
		loader:  loader,
		loc:     loc,
		timeout: timeout,
		metrics: m,
		logger:  logger.With().Str("subject", session.Subject).Logger(),
		done:    done,
	}
}

func (b *Board) Session() model.Session {
	return b.session
}

// DoctorID returns the doctor currently shown, or 0.
func (b *Board) DoctorID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doctorID
}

func (b *Board) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// SetContext switches the board to a doctor and week. Any selection is
// cleared when either changes.
func (b *Board) SetContext(doctorID int64, week time.Time) error {
	if err := authorizeGrid(b.session, doctorID); err != nil {
		return err
	}
	monday := slotgrid.MondayOf(week, b.loc)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrNoContext
	}

	if doctorID != b.doctorID || !monday.Equal(b.week) {
		b.doctorID = doctorID
		b.week = monday
		b.selection = b.selection.Reset()
		b.snapshot = nil
	}
	b.startLoadLocked()
	return nil
}

// Refresh reloads the current context, keeping the selection and the
// current grid until the new data arrives.
func (b *Board) Refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doctorID == 0 || b.closed {
		return
	}
	b.startLoadLocked()
}

func (b *Board) startLoadLocked() {
	b.generation++
	gen := b.generation

	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	done := make(chan struct{})

	b.cancel = cancel
	b.done = done
	b.loading = true
	b.loadErr = nil

	go b.load(ctx, cancel, gen, b.doctorID, b.week, done)
}

func (b *Board) load(ctx context.Context, cancel context.CancelFunc, gen uint64, doctorID int64, week time.Time, done chan struct{}) {
	defer close(done)
	defer cancel()

	snap, err := b.loader.Snapshot(ctx, doctorID, week)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		b.metrics.BoardStaleLoads.Inc()
		b.logger.Debug().
			Uint64("generation", gen).
			Uint64("current", b.generation).
			Int64("doctor_id", doctorID).
			Msg("Discarding stale board load")
		return
	}

	b.loading = false
	b.cancel = nil
	if err != nil {
		b.loadErr = err
		b.metrics.BoardLoads.WithLabelValues("error").Inc()
		b.logger.Warn().Err(err).Int64("doctor_id", doctorID).Msg("Board load failed")
		return
	}
	b.snapshot = snap
	b.metrics.BoardLoads.WithLabelValues("success").Inc()

	// a refresh may have booked the selected cell
	if _, err := b.buildLocked(snap.LoadedAt); err != nil {
		b.logger.Warn().Err(err).Int64("doctor_id", doctorID).Msg("Failed to check selection against new data")
	}
}

// Wait blocks until the load of the current generation settles, following
// any context change that happens meanwhile.
func (b *Board) Wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		done, gen := b.done, b.generation
		b.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		b.mu.Lock()
		settled := gen == b.generation
		b.mu.Unlock()
		if settled {
			return nil
		}
	}
}

// View renders the board at instant now. While the first load of a context is
// pending it returns ErrBoardLoading; a failed first load returns its error.
func (b *Board) View(now time.Time) (*BoardView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.doctorID == 0 {
		return nil, ErrNoContext
	}
	if b.snapshot == nil {
		if b.loadErr != nil {
			return nil, b.loadErr
		}
		return nil, ErrBoardLoading
	}

	grid, err := b.buildLocked(now)
	if err != nil {
		return nil, err
	}

	view := &BoardView{
		DoctorID:   b.doctorID,
		Generation: b.generation,
		Loading:    b.loading,
		LoadedAt:   b.snapshot.LoadedAt,
		Grid:       grid,
	}
	if b.loadErr != nil {
		view.Error = b.loadErr.Error()
	}
	return view, nil
}

// Click applies a click on cell at instant now.
func (b *Board) Click(cell slotgrid.Cell, now time.Time) (*ClickResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.doctorID == 0 {
		return nil, ErrNoContext
	}
	if b.snapshot == nil {
		if b.loadErr != nil {
			return nil, b.loadErr
		}
		return nil, ErrBoardLoading
	}

	grid, err := b.buildLocked(now)
	if err != nil {
		return nil, err
	}
	slot, ok := grid.Cell(cell.Date, cell.Clock)
	if !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("no slot at %s %s in the current week", cell.Date.Format(model.DateLayout), cell.Clock), nil)
	}

	result := &ClickResult{Slot: slot}
	switch b.session.Role {
	case slotgrid.RolePatient:
		b.selection = b.selection.Click(cell, slot.Classification)
		// the clicked cell reflects the new selection
		if b.selection.Matches(cell) {
			result.Slot.Classification.Status = slotgrid.StatusSelected
			result.Slot.Classification.Label = slotgrid.StatusSelected.Label()
		} else if slot.Status == slotgrid.StatusSelected {
			result.Slot.Classification.Status = slotgrid.StatusAvailable
			result.Slot.Classification.Label = slotgrid.StatusAvailable.Label()
		}
	default:
		result.Appointment = slot.Appointment
	}
	result.Selection = b.selection.View()
	return result, nil
}

// ClearSelection drops the patient's selection.
func (b *Board) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection = b.selection.Reset()
}

// Selection returns the current selection.
func (b *Board) Selection() slotgrid.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection
}

// Close cancels any in-flight load.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.generation++
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// buildLocked renders the snapshot at now. A selection whose cell is no
// longer bookable is dropped for good.
func (b *Board) buildLocked(now time.Time) (*slotgrid.WeekGrid, error) {
	sel := b.selection
	if b.session.Role != slotgrid.RolePatient {
		sel = slotgrid.NoSelection
	}
	grid, err := slotgrid.BuildWeek(slotgrid.WeekInput{
		WeekStart:    b.snapshot.WeekStart,
		Rules:        b.snapshot.Rules,
		Appointments: b.snapshot.Appointments,
		Selection:    sel,
		Role:         b.session.Role,
		Now:          now,
		Location:     b.loc,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if sel.Active() && !grid.Selection.Active() {
		b.selection = b.selection.Reset()
	}
	return grid, nil
}
