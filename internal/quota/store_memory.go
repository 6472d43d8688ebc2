package quota

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore keeps counters in process memory. It is meant for tests and
// single-process local runs; counters are lost on restart and not shared
// between replicas.
type MemoryStore struct {
	mu     sync.Mutex
	daily  map[string]DailyCounter
	hourly map[string]HourlyCounter
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		daily:  make(map[string]DailyCounter),
		hourly: make(map[string]HourlyCounter),
	}
}

func memDailyKey(k DailyKey) string {
	return k.Day() + "|" + string(k.Operation) + "|" + k.UserID
}

func memHourlyKey(k HourlyKey) string {
	return k.Day() + "|" + strconv.Itoa(k.Hour) + "|" + string(k.Operation) + "|" + k.UserID
}

func (s *MemoryStore) GetDaily(_ context.Context, key DailyKey) (DailyCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daily[memDailyKey(key)], nil
}

func (s *MemoryStore) GetHourly(_ context.Context, key HourlyKey) (HourlyCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hourly[memHourlyKey(key)], nil
}

func (s *MemoryStore) IncrementDaily(_ context.Context, key DailyKey, credits int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memDailyKey(key)
	c := s.daily[k]
	c.RequestCount++
	c.CreditsUsed += credits
	s.daily[k] = c
	return nil
}

func (s *MemoryStore) IncrementHourly(_ context.Context, key HourlyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memHourlyKey(key)
	c := s.hourly[k]
	c.RequestCount++
	s.hourly[k] = c
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
