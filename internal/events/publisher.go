package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher is what the proxy emits accounting events through.
type Publisher interface {
	PublishUsage(ctx context.Context, event UsageEvent) error
	PublishDenial(ctx context.Context, event DenialEvent) error
}

// streamPublisher is the slice of jetstream.JetStream the publisher needs.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamPublisher publishes events as JSON to JetStream. The event ID doubles as
// the message ID so JetStream de-duplicates republished events.
type JetStreamPublisher struct {
	js streamPublisher
}

// NewPublisher creates a JetStreamPublisher.
func NewPublisher(js jetstream.JetStream) *JetStreamPublisher {
	return &JetStreamPublisher{js: js}
}

func (p *JetStreamPublisher) PublishUsage(ctx context.Context, event UsageEvent) error {
	return p.publish(ctx, SubjectUsage, event.ID, event)
}

func (p *JetStreamPublisher) PublishDenial(ctx context.Context, event DenialEvent) error {
	return p.publish(ctx, SubjectDenial, event.ID, event)
}

func (p *JetStreamPublisher) publish(ctx context.Context, subject, id string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload, jetstream.WithMsgID(id))
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

// NoopPublisher drops every event. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUsage(context.Context, UsageEvent) error   { return nil }
func (NoopPublisher) PublishDenial(context.Context, DenialEvent) error { return nil }
