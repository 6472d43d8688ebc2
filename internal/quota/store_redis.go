package quota

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	dailyKeyPrefix  = "quota:daily:"
	hourlyKeyPrefix = "quota:hourly:"

	fieldRequestCount = "request_count"
	fieldCreditsUsed  = "credits_used"
)

// RedisStore keeps each counter row in a hash and increments it with HINCRBY.
// Keys carry no TTL; retention is left to the Redis eviction policy.
type RedisStore struct {
	rdb redis.Cmdable
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisDailyKey(k DailyKey) string {
	return dailyKeyPrefix + k.Day() + ":" + string(k.Operation) + ":" + k.UserID
}

func redisHourlyKey(k HourlyKey) string {
	return hourlyKeyPrefix + k.Day() + ":" + strconv.Itoa(k.Hour) + ":" + string(k.Operation) + ":" + k.UserID
}

func (s *RedisStore) GetDaily(ctx context.Context, key DailyKey) (DailyCounter, error) {
	fields, err := s.rdb.HGetAll(ctx, redisDailyKey(key)).Result()
	if err != nil {
		return DailyCounter{}, fmt.Errorf("fetching daily usage: %w", err)
	}

	var c DailyCounter
	if c.RequestCount, err = intField(fields, fieldRequestCount); err != nil {
		return DailyCounter{}, err
	}
	if c.CreditsUsed, err = intField(fields, fieldCreditsUsed); err != nil {
		return DailyCounter{}, err
	}
	return c, nil
}

func (s *RedisStore) GetHourly(ctx context.Context, key HourlyKey) (HourlyCounter, error) {
	fields, err := s.rdb.HGetAll(ctx, redisHourlyKey(key)).Result()
	if err != nil {
		return HourlyCounter{}, fmt.Errorf("fetching hourly usage: %w", err)
	}

	count, err := intField(fields, fieldRequestCount)
	if err != nil {
		return HourlyCounter{}, err
	}
	return HourlyCounter{RequestCount: count}, nil
}

// IncrementDaily bumps both fields inside MULTI/EXEC so they move together.
func (s *RedisStore) IncrementDaily(ctx context.Context, key DailyKey, credits int) error {
	k := redisDailyKey(key)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, k, fieldRequestCount, 1)
		pipe.HIncrBy(ctx, k, fieldCreditsUsed, int64(credits))
		return nil
	})
	if err != nil {
		return fmt.Errorf("incrementing daily usage: %w", err)
	}
	return nil
}

func (s *RedisStore) IncrementHourly(ctx context.Context, key HourlyKey) error {
	if err := s.rdb.HIncrBy(ctx, redisHourlyKey(key), fieldRequestCount, 1).Err(); err != nil {
		return fmt.Errorf("incrementing hourly usage: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func intField(fields map[string]string, name string) (int, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", name, raw, err)
	}
	return n, nil
}
