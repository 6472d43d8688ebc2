package quota

import (
	"time"

	"github.com/weddingseo/contentproxy/internal/operation"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// LimitKind names the window that caused a denial.
type LimitKind string

const (
	LimitDaily  LimitKind = "daily"
	LimitHourly LimitKind = "hourly"
)

// DailyKey addresses one row of the daily usage table.
type DailyKey struct {
	UserID    string
	Date      time.Time // UTC midnight
	Operation operation.Type
}

// Day returns the key's date as YYYY-MM-DD.
func (k DailyKey) Day() string {
	return k.Date.Format(time.DateOnly)
}

// HourlyKey addresses one row of the hourly usage table.
type HourlyKey struct {
	DailyKey
	Hour int // 0-23, UTC
}

// DailyCounter matches the user_requests table.
type DailyCounter struct {
	RequestCount int `json:"request_count"`
	CreditsUsed  int `json:"credits_used"`
}

// HourlyCounter matches the user_requests_hourly table.
type HourlyCounter struct {
	RequestCount int `json:"request_count"`
}

// Decision is the result of a quota check. Only denials carry the detail fields.
type Decision struct {
	Allowed bool
	Message string
	Kind    LimitKind
	Limit   int
	Current int
	ResetAt time.Time
}

// Limits renders the denial detail the way clients expect it, e.g. {"hourly": 5, "current": 5}.
func (d Decision) Limits() map[string]int {
	if d.Allowed {
		return nil
	}
	return map[string]int{
		string(d.Kind): d.Limit,
		"current":      d.Current,
	}
}

// WindowUsage is the used/limit/remaining triple of one window.
type WindowUsage struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

func newWindowUsage(limit, used int) WindowUsage {
	return WindowUsage{Limit: limit, Used: used, Remaining: limit - used}
}

// Snapshot is the remaining-quota view returned to callers.
type Snapshot struct {
	Daily  WindowUsage `json:"daily"`
	Hourly WindowUsage `json:"hourly"`
}

// window is the pair of buckets a point in time falls into.
type window struct {
	now  time.Time
	date time.Time
	hour int
}

func windowAt(t time.Time) window {
	t = t.UTC()
	return window{
		now:  t,
		date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		hour: t.Hour(),
	}
}

func (w window) dailyKey(userID string, op operation.Type) DailyKey {
	return DailyKey{UserID: userID, Date: w.date, Operation: op}
}

func (w window) hourlyKey(userID string, op operation.Type) HourlyKey {
	return HourlyKey{DailyKey: w.dailyKey(userID, op), Hour: w.hour}
}

func (w window) dailyReset() time.Time {
	return w.date.AddDate(0, 0, 1)
}

func (w window) hourlyReset() time.Time {
	return w.date.Add(time.Duration(w.hour+1) * time.Hour)
}
