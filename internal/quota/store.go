package quota

import "context"

// Store owns the usage counters. Implementations must:
//   - return zero counters and a nil error for keys with no row;
//   - apply increments atomically on the store side (no read-modify-write),
//     creating the row on first use.
//
// Any returned error is treated as a store fault by the callers.
type Store interface {
	GetDaily(ctx context.Context, key DailyKey) (DailyCounter, error)
	GetHourly(ctx context.Context, key HourlyKey) (HourlyCounter, error)
	IncrementDaily(ctx context.Context, key DailyKey, credits int) error
	IncrementHourly(ctx context.Context, key HourlyKey) error
}

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
