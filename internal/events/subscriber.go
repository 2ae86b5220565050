package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/kyomu-reader/kyomu/internal/config"
)

// NewNATSSubscriber returns a durable JetStream subscriber for the events
// topic. The durable name keeps the consumer's position across restarts
// and the queue group load-balances across worker instances. Redelivery of
// unacked messages is the only retry mechanism in the system.
func NewNATSSubscriber(cfg *config.Config, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(5),
		natsgo.AckWait(60 * time.Second),
		natsgo.DeliverNew(),
	}
	autoProvision := true
	if cfg.NATS.Stream != "" {
		subOpts = append(subOpts, natsgo.BindStream(cfg.NATS.Stream))
		autoProvision = false
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATS.URL,
		QueueGroupPrefix: cfg.NATS.Durable,
		SubscribersCount: 1,
		AckWaitTimeout:   60 * time.Second,
		CloseTimeout:     30 * time.Second,
		NatsOptions:      natsOptions(logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    autoProvision,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.NATS.Durable,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return sub, nil
}
