// Package ingest feeds the trigger engine from a NATS JetStream event
// stream, as an alternative to the HTTP ingress.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/quiverhq/quiver/pkg/model"
)

// Engine is the slice of the orchestrator the consumer needs.
type Engine interface {
	ProcessEvent(ctx context.Context, event *model.Event)
}

// Consumer pulls events from a JetStream work queue and runs them through
// the engine, acking only after processing completes.
type Consumer struct {
	log     *zap.Logger
	js      jetstream.JetStream
	engine  Engine
	stream  string
	subject string
}

// NewConsumer creates a Consumer reading from the given stream and subject
// filter on top of an existing NATS connection.
func NewConsumer(log *zap.Logger, nc *nats.Conn, engine Engine, stream, subject string) (*Consumer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	return &Consumer{
		log:     log,
		js:      js,
		engine:  engine,
		stream:  stream,
		subject: subject,
	}, nil
}

// Start begins consuming messages. It blocks until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	// Ensure the stream exists. In production this belongs to stream
	// provisioning; here it keeps development setups working.
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      c.stream,
		Subjects:  []string{c.subject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream: %w", err)
	}

	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.stream, jetstream.ConsumerConfig{
		Durable:       "TriggerEngine",
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: c.subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	iter, err := consumer.Messages(jetstream.PullMaxMessages(1))
	if err != nil {
		return fmt.Errorf("failed to create message iterator: %w", err)
	}
	defer iter.Stop()

	c.log.Info("event consumer started",
		zap.String("stream", c.stream),
		zap.String("subject", c.subject))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			msg, err := iter.Next()
			if err != nil {
				// Timeout or drain; keep polling until cancelled.
				continue
			}
			if err := c.processMsg(ctx, msg); err != nil {
				c.log.Error("failed to process event message", zap.Error(err))
				msg.Term()
			} else {
				msg.Ack()
			}
		}
	}
}

func (c *Consumer) processMsg(ctx context.Context, msg jetstream.Msg) error {
	var event model.Event
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	if event.Type == "" {
		return fmt.Errorf("event missing event_type")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	c.engine.ProcessEvent(ctx, &event)
	return nil
}
