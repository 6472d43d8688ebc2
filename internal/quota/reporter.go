package quota

import (
	"context"
	"log/slog"

	"github.com/weddingseo/contentproxy/internal/metrics"
	"github.com/weddingseo/contentproxy/internal/operation"
)

// Reporter builds remaining-quota snapshots for display.
type Reporter struct {
	store    Store
	profiles Profiles
	now      Clock
}

// NewReporter creates a Reporter reading from store.
func NewReporter(store Store, profiles Profiles, now Clock) *Reporter {
	return &Reporter{store: store, profiles: profiles, now: now}
}

// Snapshot returns used/limit/remaining for both windows, or nil if the store fails.
func (r *Reporter) Snapshot(ctx context.Context, userID string, op operation.Type) *Snapshot {
	profile := r.profiles.For(op)
	w := windowAt(r.now())

	daily, err := r.store.GetDaily(ctx, w.dailyKey(userID, op))
	if err != nil {
		r.fail(userID, op, err)
		return nil
	}

	hourly, err := r.store.GetHourly(ctx, w.hourlyKey(userID, op))
	if err != nil {
		r.fail(userID, op, err)
		return nil
	}

	return &Snapshot{
		Daily:  newWindowUsage(profile.Daily, daily.RequestCount),
		Hourly: newWindowUsage(profile.Hourly, hourly.RequestCount),
	}
}

func (r *Reporter) fail(userID string, op operation.Type, err error) {
	slog.Warn("quota: snapshot lookup failed", "user_id", userID, "type", op, "error", err)
	metrics.StoreErrorsTotal.WithLabelValues("reporter").Inc()
}
