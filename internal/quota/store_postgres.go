package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore keeps counters in the user_requests and user_requests_hourly tables.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetDaily(ctx context.Context, key DailyKey) (DailyCounter, error) {
	var c DailyCounter
	err := s.db.QueryRow(ctx,
		`SELECT request_count, credits_used
		 FROM user_requests
		 WHERE user_id = $1 AND request_date = $2 AND request_type = $3`,
		key.UserID, key.Date, string(key.Operation),
	).Scan(&c.RequestCount, &c.CreditsUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyCounter{}, nil
	}
	if err != nil {
		return DailyCounter{}, fmt.Errorf("fetching daily usage: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) GetHourly(ctx context.Context, key HourlyKey) (HourlyCounter, error) {
	var c HourlyCounter
	err := s.db.QueryRow(ctx,
		`SELECT request_count
		 FROM user_requests_hourly
		 WHERE user_id = $1 AND request_date = $2 AND request_hour = $3 AND request_type = $4`,
		key.UserID, key.Date, key.Hour, string(key.Operation),
	).Scan(&c.RequestCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return HourlyCounter{}, nil
	}
	if err != nil {
		return HourlyCounter{}, fmt.Errorf("fetching hourly usage: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) IncrementDaily(ctx context.Context, key DailyKey, credits int) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_requests (user_id, request_date, request_type, request_count, credits_used)
		 VALUES ($1, $2, $3, 1, $4)
		 ON CONFLICT (user_id, request_date, request_type) DO UPDATE
		 SET request_count = user_requests.request_count + 1,
		     credits_used = user_requests.credits_used + EXCLUDED.credits_used,
		     updated_at = NOW()`,
		key.UserID, key.Date, string(key.Operation), credits)
	if err != nil {
		return fmt.Errorf("incrementing daily usage: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrementHourly(ctx context.Context, key HourlyKey) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_requests_hourly (user_id, request_date, request_hour, request_type, request_count)
		 VALUES ($1, $2, $3, $4, 1)
		 ON CONFLICT (user_id, request_date, request_hour, request_type) DO UPDATE
		 SET request_count = user_requests_hourly.request_count + 1,
		     updated_at = NOW()`,
		key.UserID, key.Date, key.Hour, string(key.Operation))
	if err != nil {
		return fmt.Errorf("incrementing hourly usage: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
