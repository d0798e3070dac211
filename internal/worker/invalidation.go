package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RulesInvalidator drops cached availability for a doctor.
type RulesInvalidator interface {
	Invalidate(ctx context.Context, doctorID int64)
}

// BoardRefresher reloads the boards showing a doctor.
type BoardRefresher interface {
	RefreshDoctor(doctorID int64) int
}

// InvalidationWorker listens for agenda events and keeps caches and live
// boards in step with the backend.
type InvalidationWorker struct {
	subscriber Subscriber
	channel    string
	rules      RulesInvalidator
	boards     BoardRefresher
	retry      time.Duration
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewInvalidationWorker(
	subscriber Subscriber,
	channel string,
	rules RulesInvalidator,
	boards BoardRefresher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *InvalidationWorker {
	if m == nil {
		m = metrics.NewNop()
	}
	return &InvalidationWorker{
		subscriber: subscriber,
		channel:    channel,
		rules:      rules,
		boards:     boards,
		retry:      2 * time.Second,
		metrics:    m,
		logger:     logger.With().Str("component", "invalidation").Str("channel", channel).Logger(),
	}
}

// Start blocks until ctx is done, resubscribing whenever the subscription
// drops.
func (w *InvalidationWorker) Start(ctx context.Context) {
	for {
		msgs, err := w.subscriber.Subscribe(ctx, w.channel)
		if err != nil {
			w.logger.Error().Err(err).Msg("Subscribe failed")
		} else {
			w.logger.Info().Msg("Listening for agenda events")
			for raw := range msgs {
				w.handle(ctx, raw)
			}
		}

		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retry):
		}
	}
}

func (w *InvalidationWorker) handle(ctx context.Context, raw []byte) {
	var event model.AgendaEvent
	if err := json.Unmarshal(raw, &event); err != nil || event.DoctorID <= 0 {
		w.logger.Warn().Err(err).Bytes("payload", raw).Msg("Ignoring malformed agenda event")
		w.metrics.EventsReceived.WithLabelValues("malformed").Inc()
		return
	}
	w.metrics.EventsReceived.WithLabelValues(string(event.Type)).Inc()

	switch event.Type {
	case model.EventAvailabilityChanged:
		w.rules.Invalidate(ctx, event.DoctorID)
	case model.EventAgendaChanged:
	default:
		w.logger.Debug().Str("type", string(event.Type)).Msg("Ignoring unknown agenda event")
		return
	}

	n := w.boards.RefreshDoctor(event.DoctorID)
	w.logger.Debug().
		Str("type", string(event.Type)).
		Int64("doctor_id", event.DoctorID).
		Int("boards", n).
		Msg("Applied agenda event")
}
