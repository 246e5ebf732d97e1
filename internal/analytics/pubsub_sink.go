package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSubSink publishes events to a Google Cloud Pub/Sub topic as JSON.
type PubSubSink struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubSink connects to Pub/Sub and binds the topic.
func NewPubSubSink(ctx context.Context, projectID, topicName string) (*PubSubSink, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return NewPubSubSinkWithClient(client, topicName), nil
}

// NewPubSubSinkWithClient wraps an existing client, mainly for tests
// against an in-memory server. The sink takes ownership of the client and
// closes it on Close.
func NewPubSubSinkWithClient(client *pubsub.Client, topicName string) *PubSubSink {
	return &PubSubSink{
		client: client,
		topic:  client.Topic(topicName),
	}
}

// Consume marshals the event and publishes it, waiting for the server
// acknowledgement so delivery failures surface to the emitter's log.
func (s *PubSubSink) Consume(ctx context.Context, evt Event) error {
	data, err := json.Marshal(map[string]any{
		"event":      evt.Name,
		"ts":         evt.TS,
		"path":       evt.Path,
		"referrer":   evt.Referrer,
		"user_agent": evt.UserAgent,
		"country":    evt.Country,
		"city":       evt.City,
		"platform":   evt.Platform,
		"fields":     evt.Fields,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	result := s.topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close stops the topic publisher and closes the client.
func (s *PubSubSink) Close(context.Context) error {
	s.topic.Stop()
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
