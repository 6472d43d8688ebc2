package quota

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weddingseo/contentproxy/internal/metrics"
	"github.com/weddingseo/contentproxy/internal/operation"
)

// Limiter decides whether a user may run another operation in the current
// daily and hourly windows. Counters are re-read from the store on every call.
type Limiter struct {
	store    Store
	profiles Profiles
	now      Clock
}

// NewLimiter creates a Limiter reading from store.
func NewLimiter(store Store, profiles Profiles, now Clock) *Limiter {
	return &Limiter{store: store, profiles: profiles, now: now}
}

// Check compares the current counters of (userID, op) against op's profile.
// The daily window is checked first. Store faults fail open: the request is allowed.
func (l *Limiter) Check(ctx context.Context, userID string, op operation.Type) Decision {
	profile := l.profiles.For(op)
	w := windowAt(l.now())

	daily, err := l.store.GetDaily(ctx, w.dailyKey(userID, op))
	if err != nil {
		return l.failOpen(userID, op, err)
	}

	if daily.RequestCount >= profile.Daily {
		metrics.QuotaDecisionsTotal.WithLabelValues(op.String(), string(LimitDaily)).Inc()
		return Decision{
			Message: fmt.Sprintf("Tageslimit erreicht: %d %s Anfragen pro Tag. Morgen geht's weiter!", profile.Daily, op),
			Kind:    LimitDaily,
			Limit:   profile.Daily,
			Current: daily.RequestCount,
			ResetAt: w.dailyReset(),
		}
	}

	hourly, err := l.store.GetHourly(ctx, w.hourlyKey(userID, op))
	if err != nil {
		return l.failOpen(userID, op, err)
	}

	if hourly.RequestCount >= profile.Hourly {
		metrics.QuotaDecisionsTotal.WithLabelValues(op.String(), string(LimitHourly)).Inc()
		return Decision{
			Message: fmt.Sprintf("Stundenlimit erreicht: %d %s Anfragen pro Stunde. Versuche es in %d Minuten erneut.",
				profile.Hourly, op, 60-w.now.Minute()),
			Kind:    LimitHourly,
			Limit:   profile.Hourly,
			Current: hourly.RequestCount,
			ResetAt: w.hourlyReset(),
		}
	}

	metrics.QuotaDecisionsTotal.WithLabelValues(op.String(), "allowed").Inc()
	return Decision{Allowed: true}
}

func (l *Limiter) failOpen(userID string, op operation.Type, err error) Decision {
	slog.Warn("quota: counter lookup failed, allowing request",
		"user_id", userID, "type", op, "error", err)
	metrics.StoreErrorsTotal.WithLabelValues("limiter").Inc()
	metrics.QuotaDecisionsTotal.WithLabelValues(op.String(), "fail_open").Inc()
	return Decision{Allowed: true}
}
