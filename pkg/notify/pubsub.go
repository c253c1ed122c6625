package notify

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTopic is the topic notifications are published on.
const DefaultTopic = "chatclient.notifications"

// PubSubNotifier publishes notifications as JSON watermill messages so that a
// UI process can subscribe to them.
type PubSubNotifier struct {
	publisher message.Publisher
	topic     string
	logger    zerolog.Logger
}

var _ Notifier = &PubSubNotifier{}

func NewPubSubNotifier(publisher message.Publisher, topic string) *PubSubNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &PubSubNotifier{publisher: publisher, topic: topic, logger: log.Logger}
}

func (p *PubSubNotifier) Notify(ctx context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		p.logger.Error().Err(err).Msg("could not encode notification")
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if ctx != nil {
		msg.SetContext(ctx)
	}
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Warn().Err(err).Str("topic", p.topic).Msg("could not publish notification")
	}
}

// DecodeMessage turns a published watermill message back into a Notification.
func DecodeMessage(msg *message.Message) (Notification, error) {
	var n Notification
	err := json.Unmarshal(msg.Payload, &n)
	return n, err
}
