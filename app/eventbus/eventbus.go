// Package eventbus carries club messages between modules over NATS
// JetStream, or over in-process channels when NATS is not configured.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// TopicMetadataKey names the metadata entry holding a message's topic. It is
// used when Publish is called with an empty topic, as the router does for
// handler output.
const TopicMetadataKey = "topic"

// Bus publishes and subscribes to club messages.
type Bus interface {
	message.Publisher
	message.Subscriber
}

// Config holds NATS settings.
type Config struct {
	URL              string
	QueueGroupPrefix string
	AckWaitTimeout   time.Duration
}

// eventBus implements Bus over NATS JetStream.
type eventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewNATSBus connects to NATS, makes sure the club streams exist and returns
// a Bus backed by watermill-nats.
func NewNATSBus(ctx context.Context, cfg Config, logger *slog.Logger) (Bus, error) {
	natsConn, err := nc.Connect(cfg.URL, nc.RetryOnFailedConnect(true))
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	natsOptions := []nc.Option{nc.RetryOnFailedConnect(true)}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	ackWait := cfg.AckWaitTimeout
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}
	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: cfg.QueueGroupPrefix,
			AckWaitTimeout:   ackWait,
			Unmarshaler:      marshaler,
			NatsOptions:      natsOptions,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	eb := &eventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}

	for _, s := range ClubStreams {
		if err := eb.EnsureStream(ctx, s); err != nil {
			_ = eb.Close()
			return nil, err
		}
	}

	return eb, nil
}

// NewInMemoryBus returns a Bus backed by Go channels. Messages do not leave
// the process and are lost on shutdown.
func NewInMemoryBus(logger *slog.Logger) Bus {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))
	return &channelBus{GoChannel: ch}
}

type channelBus struct {
	*gochannel.GoChannel
}

func (b *channelBus) Publish(topic string, messages ...*message.Message) error {
	return publishByTopic(b.GoChannel, topic, messages)
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		eb.logger.Debug("Publishing message",
			slog.String("topic", topicOf(topic, msg)),
			slog.String("message_id", msg.UUID),
		)
	}
	if err := publishByTopic(eb.publisher, topic, messages); err != nil {
		eb.logger.Error("Failed to publish message", slog.String("topic", topic), slog.Any("error", err))
		return err
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return messages, nil
}

// publishByTopic sends each message to topic, or to the topic in its
// metadata when topic is empty.
func publishByTopic(pub message.Publisher, topic string, messages []*message.Message) error {
	for _, msg := range messages {
		t := topicOf(topic, msg)
		if t == "" {
			return fmt.Errorf("message %s has no topic", msg.UUID)
		}
		if err := pub.Publish(t, msg); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", t, err)
		}
	}
	return nil
}

func topicOf(topic string, msg *message.Message) string {
	if topic != "" {
		return topic
	}
	return msg.Metadata.Get(TopicMetadataKey)
}

// Close closes all NATS and Watermill resources.
func (eb *eventBus) Close() error {
	var errs []error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", "error", err)
			errs = append(errs, err)
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", "error", err)
			errs = append(errs, err)
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}
