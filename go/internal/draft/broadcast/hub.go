package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livedraft_broadcast_events_total",
			Help: "Draft events handed to broadcast sinks",
		},
		[]string{"sink", "type"},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livedraft_broadcast_dropped_total",
			Help: "Draft events a sink failed to accept",
		},
		[]string{"sink"},
	)
)

// Sink is one destination for draft events. Publish is called in event order and
// must not block the caller for long.
type Sink interface {
	Publish(ctx context.Context, event events.Envelope) error
}

type namedSink struct {
	name string
	sink Sink
}

// Hub fans every event out to its sinks in registration order. A failing sink
// never stops delivery to the others.
type Hub struct {
	mu    sync.RWMutex
	sinks []namedSink
}

func NewHub() *Hub {
	return &Hub{}
}

// Add registers a sink under a name used in logs and metrics.
func (h *Hub) Add(name string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, namedSink{name: name, sink: sink})
}

// Publish implements the orchestrator's Publisher.
func (h *Hub) Publish(ctx context.Context, event events.Envelope) error {
	h.mu.RLock()
	sinks := h.sinks
	h.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		if err := s.sink.Publish(ctx, event); err != nil {
			eventsDropped.WithLabelValues(s.name).Inc()
			log.Warn().
				Err(err).
				Str("sink", s.name).
				Str("draft_id", event.DraftID.String()).
				Str("event_type", string(event.Type)).
				Msg("broadcast sink rejected event")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		eventsPublished.WithLabelValues(s.name, string(event.Type)).Inc()
	}
	return errors.Join(errs...)
}

// LogSink writes events to the structured log. Ticks are logged at trace level.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, e events.Envelope) error {
	ev := log.Debug()
	if e.Type == events.EventTypeTimerTick {
		ev = log.Trace()
	}
	ev.Str("draft_id", e.DraftID.String()).
		Str("event_type", string(e.Type)).
		Uint64("sequence", e.Sequence).
		Msg("draft event")
	return nil
}
