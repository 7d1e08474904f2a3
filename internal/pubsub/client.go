package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/metrics"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/vmihailenco/msgpack/v5"
)

const sinkName = "pubsub"

// topicPublisher is the part of *pubsub.Topic that we use.
type topicPublisher interface {
	publish(ctx context.Context, msg *pubsub.Message) (string, error)
}

type cloudTopic struct {
	topic *pubsub.Topic
}

func (c cloudTopic) publish(ctx context.Context, msg *pubsub.Message) (string, error) {
	return c.topic.Publish(ctx, msg).Get(ctx)
}

var _ notifier.Publisher = (*Publisher)(nil)

// Publisher forwards notification events to a Google Cloud Pub/Sub topic.
// The logical topic travels in the message attributes.
type Publisher struct {
	topic   topicPublisher
	origin  string
	metrics metrics.Metrics
}

// New connects to projectID and publishes to topicID. origin identifies this
// instance so it can ignore its own messages when they are pushed back.
func New(ctx context.Context, projectID, topicID, origin string, m metrics.Metrics) (*Publisher, func(), error) {
	c, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	topic := c.Topic(topicID)
	teardown := func() {
		topic.Stop()
		if err := c.Close(); err != nil {
			log.Error("Failed to close pubsub client", "error", err)
		}
	}
	return newPublisher(cloudTopic{topic: topic}, origin, m), teardown, nil
}

func newPublisher(topic topicPublisher, origin string, m metrics.Metrics) *Publisher {
	return &Publisher{topic: topic, origin: origin, metrics: m}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event notifier.Event) (string, error) {
	data, err := msgpack.Marshal(&event)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return "", err
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			AttrTopic:  topic,
			AttrKind:   string(event.Kind),
			AttrOrigin: p.origin,
		},
	}
	serverID, err := p.topic.publish(ctx, msg)
	if err != nil {
		p.metrics.IncNotifFailed(sinkName)
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return "", err
	}
	p.metrics.IncNotifSent(sinkName)
	log.Debug("Published message", "serverID", serverID, "topic", topic)
	return serverID, nil
}
