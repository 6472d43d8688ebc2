package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_requests (
    user_id       TEXT    NOT NULL,
    request_date  TEXT    NOT NULL,
    request_type  TEXT    NOT NULL,
    request_count INTEGER NOT NULL DEFAULT 0,
    credits_used  INTEGER NOT NULL DEFAULT 0,
    updated_at    TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, request_date, request_type)
);

CREATE TABLE IF NOT EXISTS user_requests_hourly (
    user_id       TEXT    NOT NULL,
    request_date  TEXT    NOT NULL,
    request_hour  INTEGER NOT NULL,
    request_type  TEXT    NOT NULL,
    request_count INTEGER NOT NULL DEFAULT 0,
    updated_at    TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, request_date, request_hour, request_type)
);
`

// SQLiteStore keeps counters in a local SQLite database, for single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// SQLite allows a single writer; one connection serializes access.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		slog.Warn("sqlite: enabling WAL mode failed", "error", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=10000"); err != nil {
		slog.Warn("sqlite: setting busy timeout failed", "error", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}

	slog.Info("opened SQLite quota store", "path", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetDaily(ctx context.Context, key DailyKey) (DailyCounter, error) {
	var c DailyCounter
	err := s.db.QueryRowContext(ctx,
		`SELECT request_count, credits_used FROM user_requests
		 WHERE user_id = ? AND request_date = ? AND request_type = ?`,
		key.UserID, key.Day(), string(key.Operation),
	).Scan(&c.RequestCount, &c.CreditsUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return DailyCounter{}, nil
	}
	if err != nil {
		return DailyCounter{}, fmt.Errorf("fetching daily usage: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetHourly(ctx context.Context, key HourlyKey) (HourlyCounter, error) {
	var c HourlyCounter
	err := s.db.QueryRowContext(ctx,
		`SELECT request_count FROM user_requests_hourly
		 WHERE user_id = ? AND request_date = ? AND request_hour = ? AND request_type = ?`,
		key.UserID, key.Day(), key.Hour, string(key.Operation),
	).Scan(&c.RequestCount)
	if errors.Is(err, sql.ErrNoRows) {
		return HourlyCounter{}, nil
	}
	if err != nil {
		return HourlyCounter{}, fmt.Errorf("fetching hourly usage: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) IncrementDaily(ctx context.Context, key DailyKey, credits int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_requests (user_id, request_date, request_type, request_count, credits_used)
		 VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT (user_id, request_date, request_type) DO UPDATE
		 SET request_count = request_count + 1,
		     credits_used = credits_used + excluded.credits_used,
		     updated_at = CURRENT_TIMESTAMP`,
		key.UserID, key.Day(), string(key.Operation), credits)
	if err != nil {
		return fmt.Errorf("incrementing daily usage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IncrementHourly(ctx context.Context, key HourlyKey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_requests_hourly (user_id, request_date, request_hour, request_type, request_count)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT (user_id, request_date, request_hour, request_type) DO UPDATE
		 SET request_count = request_count + 1,
		     updated_at = CURRENT_TIMESTAMP`,
		key.UserID, key.Day(), key.Hour, string(key.Operation))
	if err != nil {
		return fmt.Errorf("incrementing hourly usage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
