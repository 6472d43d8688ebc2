// Package events publishes quota accounting events to NATS JetStream so that billing and
// analytics consumers can follow usage without reading the counter store.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/weddingseo/contentproxy/internal/operation"
	"github.com/weddingseo/contentproxy/internal/quota"
)

const StreamEvents = "CONTENTPROXY_EVENTS"

const (
	SubjectPrefix = "contentproxy.events"
	SubjectUsage  = SubjectPrefix + ".usage"
	SubjectDenial = SubjectPrefix + ".denial"
)

// UsageEvent is published after a successful request has been tracked.
type UsageEvent struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      operation.Type `json:"type"`
	Credits   int            `json:"credits"`
	Timestamp time.Time      `json:"timestamp"`
}

// DenialEvent is published when the limiter rejects a request.
type DenialEvent struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      operation.Type  `json:"type"`
	Kind      quota.LimitKind `json:"kind"`
	Limit     int             `json:"limit"`
	Current   int             `json:"current"`
	ResetAt   time.Time       `json:"reset_at"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewUsageEvent builds a UsageEvent with a fresh ID.
func NewUsageEvent(userID string, op operation.Type, credits int, at time.Time) UsageEvent {
	return UsageEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      op,
		Credits:   credits,
		Timestamp: at.UTC(),
	}
}

// NewDenialEvent builds a DenialEvent from a rejecting decision.
func NewDenialEvent(userID string, op operation.Type, d quota.Decision, at time.Time) DenialEvent {
	return DenialEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      op,
		Kind:      d.Kind,
		Limit:     d.Limit,
		Current:   d.Current,
		ResetAt:   d.ResetAt.UTC(),
		Timestamp: at.UTC(),
	}
}
