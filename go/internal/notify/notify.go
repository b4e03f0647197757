// Package notify delivers per-user draft notifications outside the draft's
// broadcast stream.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
)

type Kind string

const (
	KindPickMade Kind = "pick_made"
	KindYourTurn Kind = "your_turn"
)

const DefaultSubjectPrefix = "draft.notify"

var sent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "livedraft_notifications_total",
		Help: "User notifications by kind and result",
	},
	[]string{"kind", "result"},
)

// Message is the JSON body published for one notification.
type Message struct {
	Kind             Kind                    `json:"kind"`
	UserID           uuid.UUID               `json:"user_id"`
	DraftID          uuid.UUID               `json:"draft_id"`
	Pick             *events.PickMadePayload `json:"pick,omitempty"`
	MinutesRemaining int                     `json:"minutes_remaining,omitempty"`
	SentAt           time.Time               `json:"sent_at"`
}

// Subject returns where notifications for a user are published: <prefix>.<user id>.<kind>.
func Subject(prefix string, userID uuid.UUID, kind Kind) string {
	return fmt.Sprintf("%s.%s.%s", prefix, userID, kind)
}

// NATSNotifier publishes on core NATS. Delivery is fire-and-forget: a user with
// no subscriber simply misses the message.
type NATSNotifier struct {
	nc     *nats.Conn
	prefix string
	clock  clockwork.Clock
}

func NewNATSNotifier(nc *nats.Conn, prefix string, clock clockwork.Clock) *NATSNotifier {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSNotifier{nc: nc, prefix: prefix, clock: clock}
}

func (n *NATSNotifier) PickMade(_ context.Context, userID, draftID uuid.UUID, pick events.PickMadePayload) {
	n.publish(Message{Kind: KindPickMade, UserID: userID, DraftID: draftID, Pick: &pick})
}

func (n *NATSNotifier) YourTurn(_ context.Context, userID, draftID uuid.UUID, minutesRemaining int) {
	n.publish(Message{Kind: KindYourTurn, UserID: userID, DraftID: draftID, MinutesRemaining: minutesRemaining})
}

// publish never blocks on the network; nats.Conn buffers writes.
func (n *NATSNotifier) publish(m Message) {
	m.SentAt = n.clock.Now().UTC()
	data, err := json.Marshal(m)
	if err != nil {
		sent.WithLabelValues(string(m.Kind), "error").Inc()
		log.Error().Err(err).Str("kind", string(m.Kind)).Msg("failed to marshal notification")
		return
	}

	subject := Subject(n.prefix, m.UserID, m.Kind)
	if err := n.nc.Publish(subject, data); err != nil {
		sent.WithLabelValues(string(m.Kind), "error").Inc()
		log.Warn().
			Err(err).
			Str("subject", subject).
			Str("draft_id", m.DraftID.String()).
			Msg("failed to publish notification")
		return
	}
	sent.WithLabelValues(string(m.Kind), "ok").Inc()
}

// LogNotifier writes notifications to the log. It is used when NATS is disabled.
type LogNotifier struct{}

func (LogNotifier) PickMade(_ context.Context, userID, draftID uuid.UUID, pick events.PickMadePayload) {
	sent.WithLabelValues(string(KindPickMade), "logged").Inc()
	log.Info().
		Str("user_id", userID.String()).
		Str("draft_id", draftID.String()).
		Int("overall_pick", pick.OverallPick).
		Str("player_name", pick.PlayerName).
		Msg("notify: pick made")
}

func (LogNotifier) YourTurn(_ context.Context, userID, draftID uuid.UUID, minutesRemaining int) {
	sent.WithLabelValues(string(KindYourTurn), "logged").Inc()
	log.Info().
		Str("user_id", userID.String()).
		Str("draft_id", draftID.String()).
		Int("minutes_remaining", minutesRemaining).
		Msg("notify: your turn")
}
