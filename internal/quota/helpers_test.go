package quota

import (
	"context"
	"errors"
	"time"
)

var errStoreDown = errors.New("connection refused")

// fixedNow is 2025-06-14 10:20:00 UTC.
var fixedNow = time.Date(2025, time.June, 14, 10, 20, 0, 0, time.UTC)

func clockAt(t time.Time) Clock {
	return func() time.Time { return t }
}

// failingStore fails the operations whose flag is set and delegates the rest.
type failingStore struct {
	Store
	failDailyRead   bool
	failHourlyRead  bool
	failDailyWrite  bool
	failHourlyWrite bool

	hourlyWrites int
}

func (s *failingStore) GetDaily(ctx context.Context, key DailyKey) (DailyCounter, error) {
	if s.failDailyRead {
		return DailyCounter{}, errStoreDown
	}
	return s.Store.GetDaily(ctx, key)
}

func (s *failingStore) GetHourly(ctx context.Context, key HourlyKey) (HourlyCounter, error) {
	if s.failHourlyRead {
		return HourlyCounter{}, errStoreDown
	}
	return s.Store.GetHourly(ctx, key)
}

func (s *failingStore) IncrementDaily(ctx context.Context, key DailyKey, credits int) error {
	if s.failDailyWrite {
		return errStoreDown
	}
	return s.Store.IncrementDaily(ctx, key, credits)
}

func (s *failingStore) IncrementHourly(ctx context.Context, key HourlyKey) error {
	s.hourlyWrites++
	if s.failHourlyWrite {
		return errStoreDown
	}
	return s.Store.IncrementHourly(ctx, key)
}
