package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

const (
	natsMaxReconnects     = -1
	natsReconnectWait     = 2 * time.Second
	consumerMaxDeliver    = 5
	consumerAckWait       = 30 * time.Second
	consumerMaxAckPending = 256
)

// CommandHandler executes a decoded command.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd Command) error
}

// ConnectNATS creates a NATS connection with JetStream.
func ConnectNATS(natsURL string) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return nc, js, nil
}

// CommandConsumer feeds draft commands published on JetStream into a handler.
// Subjects are "<prefix>.<draft id>".
type CommandConsumer struct {
	js           jetstream.JetStream
	handler      CommandHandler
	streamName   string
	subject      string
	consumerName string

	consumer jetstream.Consumer
}

// NewCommandConsumer creates a consumer for the given stream and subject prefix.
func NewCommandConsumer(js jetstream.JetStream, handler CommandHandler, streamName, subjectPrefix string) *CommandConsumer {
	return &CommandConsumer{
		js:           js,
		handler:      handler,
		streamName:   streamName,
		subject:      subjectPrefix + ".>",
		consumerName: "draft-orchestrator-commands",
	}
}

// ensureConsumer creates the stream and durable consumer when missing
func (c *CommandConsumer) ensureConsumer(ctx context.Context) error {
	stream, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      c.streamName,
		Subjects:  []string{c.subject},
		Retention: jetstream.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Name:          c.consumerName,
		Durable:       c.consumerName,
		Description:   "Draft orchestrator command consumer",
		FilterSubject: c.subject,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    consumerMaxDeliver,
		AckWait:       consumerAckWait,
		MaxAckPending: consumerMaxAckPending,
	}

	// Try to get existing consumer
	consumer, err := stream.Consumer(ctx, c.consumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, consumerConfig)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Str("stream", c.streamName).Msg("created JetStream command consumer")
	} else {
		log.Info().Str("stream", c.streamName).Msg("using existing JetStream command consumer")
	}

	c.consumer = consumer
	return nil
}

// Run consumes commands until ctx is cancelled.
func (c *CommandConsumer) Run(ctx context.Context) error {
	if err := c.ensureConsumer(ctx); err != nil {
		return err
	}

	cc, err := c.consumer.Consume(func(msg jetstream.Msg) {
		err := c.processMessage(ctx, msg)
		switch {
		case err == nil:
			if err := msg.Ack(); err != nil {
				log.Warn().Err(err).Str("subject", msg.Subject()).Msg("failed to ack command")
			}
		case errors.Is(err, errMalformedCommand) || IsRejection(err):
			log.Warn().Err(err).Str("subject", msg.Subject()).Msg("command rejected")
			_ = msg.Term()
		default:
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("command failed, will redeliver")
			_ = msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consuming commands: %w", err)
	}
	defer cc.Stop()

	log.Info().Str("subject", c.subject).Msg("command consumer started")
	<-ctx.Done()
	log.Info().Msg("command consumer stopped")
	return nil
}

var errMalformedCommand = errors.New("malformed command")

// processMessage decodes a single JetStream message and runs it
func (c *CommandConsumer) processMessage(ctx context.Context, msg jetstream.Msg) error {
	var cmd Command
	if err := json.Unmarshal(msg.Data(), &cmd); err != nil {
		return fmt.Errorf("%w: %v", errMalformedCommand, err)
	}

	log.Debug().
		Str("subject", msg.Subject()).
		Str("draft_id", cmd.DraftID.String()).
		Str("command", string(cmd.Type)).
		Msg("processing draft command")

	return c.handler.HandleCommand(ctx, cmd)
}
