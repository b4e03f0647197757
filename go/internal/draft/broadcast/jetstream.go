package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
)

// ErrQueueFull is returned when the sink cannot keep up with the event rate.
var ErrQueueFull = errors.New("jetstream sink queue full")

type JetStreamConfig struct {
	StreamName      string
	SubjectPrefix   string
	MaxAge          time.Duration // How long to keep messages
	MaxMsgs         int64         // Max number of messages to keep
	Replicas        int           // Number of replicas for the stream
	DuplicateWindow time.Duration // Window for duplicate detection
	Storage         jetstream.StorageType
	QueueSize       int
	MaxRetries      int
	RetryDelay      time.Duration
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		StreamName:      "DRAFT_EVENTS",
		SubjectPrefix:   "draft.events",
		MaxAge:          7 * 24 * time.Hour, // 7 days
		MaxMsgs:         -1,                 // No limit
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
		Storage:         jetstream.FileStorage,
		QueueSize:       1024,
		MaxRetries:      5,
		RetryDelay:      200 * time.Millisecond,
	}
}

// JetStreamSink publishes draft events to a JetStream stream on
// "<prefix>.<draft id>.<event type>". Publish only enqueues; a single goroutine
// sends in order so per-draft ordering survives retries.
type JetStreamSink struct {
	js     jetstream.JetStream
	config JetStreamConfig

	queue chan events.Envelope
	wg    sync.WaitGroup
	once  sync.Once
}

// NewJetStreamSink ensures the stream exists and starts the sender.
func NewJetStreamSink(ctx context.Context, js jetstream.JetStream, cfg JetStreamConfig) (*JetStreamSink, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultJetStreamConfig().QueueSize
	}
	s := &JetStreamSink{
		js:     js,
		config: cfg,
		queue:  make(chan events.Envelope, cfg.QueueSize),
	}
	if err := s.ensureStream(ctx); err != nil {
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	s.wg.Add(1)
	go s.run()
	return s, nil
}

func (s *JetStreamSink) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:        s.config.StreamName,
		Description: "Live draft events",
		Subjects:    []string{fmt.Sprintf("%s.>", s.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      s.config.MaxAge,
		MaxMsgs:     s.config.MaxMsgs,
		Storage:     s.config.Storage,
		Replicas:    s.config.Replicas,
		Duplicates:  s.config.DuplicateWindow,
	}

	stream, err := s.js.Stream(ctx, s.config.StreamName)
	if err != nil {
		if _, err = s.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", s.config.StreamName).
			Msg("created JetStream stream")
		return nil
	}

	// Update existing if needed
	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = s.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", s.config.StreamName).
			Msg("updated JetStream stream")
	}
	return nil
}

// Publish enqueues the event. It never blocks.
func (s *JetStreamSink) Publish(_ context.Context, event events.Envelope) (err error) {
	defer func() {
		// Publishing after Close
		if recover() != nil {
			err = errors.New("jetstream sink closed")
		}
	}()

	select {
	case s.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *JetStreamSink) run() {
	defer s.wg.Done()
	for event := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.publishWithRetry(ctx, event); err != nil {
			eventsDropped.WithLabelValues("jetstream").Inc()
			log.Error().
				Err(err).
				Str("draft_id", event.DraftID.String()).
				Str("event_id", event.ID.String()).
				Msg("dropping draft event")
		}
		cancel()
	}
}

// publishWithRetry attempts to publish an event with linear backoff.
func (s *JetStreamSink) publishWithRetry(ctx context.Context, event events.Envelope) error {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.config.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := s.send(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", s.config.MaxRetries+1, lastErr)
}

func (s *JetStreamSink) send(ctx context.Context, event events.Envelope) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := Subject(s.config.SubjectPrefix, event)
	ack, err := s.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(event.Type)},
			"Draft-ID":   []string{event.DraftID.String()},
			"Event-ID":   []string{event.ID.String()},
		},
	},
		jetstream.WithMsgID(event.ID.String()),
		jetstream.WithExpectStream(s.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Trace().
		Str("subject", subject).
		Uint64("sequence", ack.Sequence).
		Msg("published to JetStream")
	return nil
}

// Close stops accepting events and waits for the queue to drain.
func (s *JetStreamSink) Close() error {
	s.once.Do(func() { close(s.queue) })
	s.wg.Wait()
	return nil
}

// Subject is the JetStream subject an event is published on.
func Subject(prefix string, event events.Envelope) string {
	return fmt.Sprintf("%s.%s.%s", prefix, event.DraftID, event.Type)
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
