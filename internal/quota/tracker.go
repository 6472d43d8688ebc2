package quota

import (
	"context"
	"log/slog"

	"github.com/weddingseo/contentproxy/internal/metrics"
	"github.com/weddingseo/contentproxy/internal/operation"
)

// Tracker records completed operations against the usage counters.
type Tracker struct {
	store    Store
	profiles Profiles
	now      Clock
}

// NewTracker creates a Tracker writing to store.
func NewTracker(store Store, profiles Profiles, now Clock) *Tracker {
	return &Tracker{store: store, profiles: profiles, now: now}
}

// Record adds one request (and op's credit cost) to the daily counter and one
// request to the hourly counter. The two increments are independent; failures are
// logged and never returned because the upstream cost has already been incurred.
func (t *Tracker) Record(ctx context.Context, userID string, op operation.Type) {
	profile := t.profiles.For(op)
	w := windowAt(t.now())

	if err := t.store.IncrementDaily(ctx, w.dailyKey(userID, op), profile.Credits); err != nil {
		slog.Error("quota: recording daily usage failed",
			"user_id", userID, "type", op, "error", err)
		metrics.StoreErrorsTotal.WithLabelValues("tracker").Inc()
	} else {
		metrics.CreditsConsumedTotal.WithLabelValues(op.String()).Add(float64(profile.Credits))
	}

	if err := t.store.IncrementHourly(ctx, w.hourlyKey(userID, op)); err != nil {
		slog.Error("quota: recording hourly usage failed",
			"user_id", userID, "type", op, "error", err)
		metrics.StoreErrorsTotal.WithLabelValues("tracker").Inc()
	}
}
