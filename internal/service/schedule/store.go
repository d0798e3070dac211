package schedule

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

type BoardStoreConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	LoadTimeout     time.Duration
}

// BoardStore keeps one Board per session subject. Idle boards expire after
// the TTL and have their in-flight loads cancelled.
type BoardStore struct {
	mu      sync.Mutex
	boards  *gocache.Cache
	loader  Loader
	loc     *time.Location
	cfg     BoardStoreConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewBoardStore(svc *Service, cfg BoardStoreConfig) *BoardStore {
	return newBoardStore(svc, svc.Location(), cfg, svc.metrics)
}

func newBoardStore(loader Loader, loc *time.Location, cfg BoardStoreConfig, m *metrics.Metrics) *BoardStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 5 * time.Second
	}
	if m == nil {
		m = metrics.NewNop()
	}

	s := &BoardStore{
		boards:  gocache.New(cfg.TTL, cfg.CleanupInterval),
		loader:  loader,
		loc:     loc,
		cfg:     cfg,
		metrics: m,
		logger:  log.With().Str("component", "board-store").Logger(),
	}
	s.boards.OnEvicted(func(_ string, v interface{}) {
		v.(*Board).Close()
		s.metrics.BoardsActive.Dec()
	})
	return s
}

// Get returns the session's board, creating it on first use. A role change
// for the same subject starts a fresh board.
func (s *BoardStore) Get(session model.Session) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.boards.Get(session.Subject); ok {
		b := v.(*Board)
		if b.session == session {
			// slide the expiry
			s.boards.SetDefault(session.Subject, b)
			return b
		}
	}
	// also evicts an expired board the janitor has not reached yet
	s.boards.Delete(session.Subject)

	b := newBoard(session, s.loader, s.loc, s.cfg.LoadTimeout, s.metrics, s.logger)
	s.boards.SetDefault(session.Subject, b)
	s.metrics.BoardsActive.Inc()
	return b
}

// Delete drops the session's board.
func (s *BoardStore) Delete(subject string) {
	s.boards.Delete(subject)
}

// ForDoctor returns the boards currently showing doctorID.
func (s *BoardStore) ForDoctor(doctorID int64) []*Board {
	var out []*Board
	for _, item := range s.boards.Items() {
		b := item.Object.(*Board)
		if b.DoctorID() == doctorID {
			out = append(out, b)
		}
	}
	return out
}

// RefreshDoctor reloads every board showing doctorID and returns how many.
func (s *BoardStore) RefreshDoctor(doctorID int64) int {
	boards := s.ForDoctor(doctorID)
	for _, b := range boards {
		b.Refresh()
	}
	return len(boards)
}

// RefreshAll reloads every board that has a doctor selected.
func (s *BoardStore) RefreshAll() int {
	n := 0
	for _, item := range s.boards.Items() {
		b := item.Object.(*Board)
		if b.DoctorID() != 0 {
			b.Refresh()
			n++
		}
	}
	return n
}

func (s *BoardStore) Count() int {
	return s.boards.ItemCount()
}

// Close cancels every board, including expired ones the janitor has not
// swept yet.
func (s *BoardStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards.DeleteExpired()
	for subject := range s.boards.Items() {
		s.boards.Delete(subject)
	}
}
