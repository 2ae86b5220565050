package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/kyomu-reader/kyomu/internal/config"
)

// Publisher publishes domain events to the bus.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// BusPublisher publishes events on a fixed topic over any watermill
// publisher. The API server uses it with NATS JetStream; tests use it with
// an in-process pubsub.
type BusPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewBusPublisher wraps an existing watermill publisher.
func NewBusPublisher(pub message.Publisher, topic string) *BusPublisher {
	return &BusPublisher{publisher: pub, topic: topic}
}

// NewNATSPublisher connects to NATS JetStream and returns a publisher for
// the configured events topic. Message-ID tracking is enabled so redundant
// publishes of the same event are deduplicated server-side.
func NewNATSPublisher(cfg *config.Config, logger watermill.LoggerAdapter) (*BusPublisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATS.URL,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &BusPublisher{publisher: pub, topic: cfg.Events.Topic}, nil
}

// Publish encodes the event and sends it. The message UUID carries the
// event ID for JetStream deduplication.
func (p *BusPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := Encode(ev)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Close shuts the underlying publisher down.
func (p *BusPublisher) Close() error {
	return p.publisher.Close()
}

// natsOptions builds the shared NATS connection options with reconnection
// handling.
func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}
}
