package pubsub

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/vmihailenco/msgpack/v5"
)

// Message attributes.
const (
	AttrTopic  = "topic"
	AttrKind   = "event"
	AttrOrigin = "origin"
)

// Message is a decoded notification event received from a push subscription.
type Message struct {
	Topic  string
	Origin string
	Event  notifier.Event
}

// pushEnvelope is the JSON body Pub/Sub posts to push endpoints.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
}

// ParsePush decodes a push request body.
func ParsePush(body []byte) (Message, error) {
	var env pushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Message{}, fmt.Errorf("invalid push envelope: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		return Message{}, fmt.Errorf("invalid base64 data: %w", err)
	}
	return Decode(raw, env.Message.Attributes)
}

// Decode rebuilds a Message from its payload and attributes.
func Decode(data []byte, attributes map[string]string) (Message, error) {
	var event notifier.Event
	if err := msgpack.Unmarshal(data, &event); err != nil {
		return Message{}, fmt.Errorf("MessagePack unmarshal error: %w", err)
	}
	topic := attributes[AttrTopic]
	if topic == "" {
		return Message{}, fmt.Errorf("message has no %s attribute", AttrTopic)
	}
	return Message{Topic: topic, Origin: attributes[AttrOrigin], Event: event}, nil
}
