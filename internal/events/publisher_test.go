package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weddingseo/contentproxy/internal/operation"
	"github.com/weddingseo/contentproxy/internal/quota"
)

type published struct {
	subject string
	payload []byte
	opts    int
}

type fakeStream struct {
	msgs []published
	err  error
}

func (f *fakeStream) Publish(_ context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, payload: payload, opts: len(opts)})
	return &jetstream.PubAck{Stream: StreamEvents}, nil
}

var eventTime = time.Date(2025, 6, 14, 10, 20, 0, 0, time.UTC)

func TestPublishUsage(t *testing.T) {
	fs := &fakeStream{}
	p := &JetStreamPublisher{js: fs}

	ev := NewUsageEvent("user-1", operation.OutlineGeneration, 3, eventTime)
	require.NoError(t, p.PublishUsage(context.Background(), ev))

	require.Len(t, fs.msgs, 1)
	assert.Equal(t, SubjectUsage, fs.msgs[0].subject)
	assert.Equal(t, 1, fs.msgs[0].opts)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fs.msgs[0].payload, &got))
	assert.Equal(t, ev.ID, got["id"])
	assert.Equal(t, "user-1", got["user_id"])
	assert.Equal(t, "outline-generation", got["type"])
	assert.EqualValues(t, 3, got["credits"])
	assert.Equal(t, "2025-06-14T10:20:00Z", got["timestamp"])
}

func TestPublishDenial(t *testing.T) {
	fs := &fakeStream{}
	p := &JetStreamPublisher{js: fs}

	d := quota.Decision{
		Kind:    quota.LimitHourly,
		Limit:   5,
		Current: 5,
		ResetAt: time.Date(2025, 6, 14, 11, 0, 0, 0, time.UTC),
	}
	ev := NewDenialEvent("user-1", operation.TitleOptimization, d, eventTime)
	require.NoError(t, p.PublishDenial(context.Background(), ev))

	require.Len(t, fs.msgs, 1)
	assert.Equal(t, SubjectDenial, fs.msgs[0].subject)

	var got DenialEvent
	require.NoError(t, json.Unmarshal(fs.msgs[0].payload, &got))
	assert.Equal(t, quota.LimitHourly, got.Kind)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, d.ResetAt, got.ResetAt)
}

func TestPublishError(t *testing.T) {
	p := &JetStreamPublisher{js: &fakeStream{err: errors.New("no responders")}}

	err := p.PublishUsage(context.Background(), NewUsageEvent("u", operation.General, 1, eventTime))
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectUsage)
}

func TestNewEventsHaveDistinctIDs(t *testing.T) {
	a := NewUsageEvent("u", operation.General, 1, eventTime)
	b := NewUsageEvent("u", operation.General, 1, eventTime)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEmpty(t, a.ID)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishUsage(context.Background(), UsageEvent{}))
	assert.NoError(t, p.PublishDenial(context.Background(), DenialEvent{}))
}
