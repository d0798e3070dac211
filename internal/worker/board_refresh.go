package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BoardSweeper is implemented by schedule.BoardStore.
type BoardSweeper interface {
	RefreshAll() int
}

// BoardRefreshWorker periodically reloads every live board. It covers
// bookings changed by a backend that does not publish agenda events.
type BoardRefreshWorker struct {
	boards   BoardSweeper
	interval time.Duration
	logger   zerolog.Logger
}

func NewBoardRefreshWorker(boards BoardSweeper, interval time.Duration, logger zerolog.Logger) *BoardRefreshWorker {
	return &BoardRefreshWorker{
		boards:   boards,
		interval: interval,
		logger:   logger.With().Str("component", "board-refresh").Logger(),
	}
}

// Start blocks until ctx is done. A non-positive interval disables the worker.
func (w *BoardRefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := w.boards.RefreshAll()
			w.logger.Debug().Int("boards", n).Msg("Refreshed live boards")
		}
	}
}
