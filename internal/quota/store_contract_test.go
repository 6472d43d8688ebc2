package quota

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weddingseo/contentproxy/internal/operation"
)

// runStoreContract exercises the behaviour every Store implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()
	w := windowAt(fixedNow)

	t.Run("missing rows read as zero", func(t *testing.T) {
		s := newStore(t)
		daily, err := s.GetDaily(ctx, w.dailyKey("nobody", operation.General))
		require.NoError(t, err)
		assert.Equal(t, DailyCounter{}, daily)

		hourly, err := s.GetHourly(ctx, w.hourlyKey("nobody", operation.General))
		require.NoError(t, err)
		assert.Equal(t, HourlyCounter{}, hourly)
	})

	t.Run("increments create then add", func(t *testing.T) {
		s := newStore(t)
		dk := w.dailyKey("user-1", operation.OutlineGeneration)
		hk := w.hourlyKey("user-1", operation.OutlineGeneration)

		require.NoError(t, s.IncrementDaily(ctx, dk, 3))
		require.NoError(t, s.IncrementDaily(ctx, dk, 3))
		require.NoError(t, s.IncrementHourly(ctx, hk))

		daily, err := s.GetDaily(ctx, dk)
		require.NoError(t, err)
		assert.Equal(t, DailyCounter{RequestCount: 2, CreditsUsed: 6}, daily)

		hourly, err := s.GetHourly(ctx, hk)
		require.NoError(t, err)
		assert.Equal(t, 1, hourly.RequestCount)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.IncrementDaily(ctx, w.dailyKey("user-1", operation.General), 1))
		require.NoError(t, s.IncrementHourly(ctx, w.hourlyKey("user-1", operation.General)))

		other := []HourlyKey{
			w.hourlyKey("user-2", operation.General),
			w.hourlyKey("user-1", operation.TextImprovement),
			windowAt(fixedNow.Add(-time.Hour)).hourlyKey("user-1", operation.General),
		}
		for _, k := range other {
			hourly, err := s.GetHourly(ctx, k)
			require.NoError(t, err)
			assert.Zero(t, hourly.RequestCount, "%+v", k)

			daily, err := s.GetDaily(ctx, k.DailyKey)
			require.NoError(t, err)
			if k.UserID == "user-1" && k.Operation == operation.General {
				assert.Equal(t, 1, daily.RequestCount, "same day, different hour shares the daily row")
			} else {
				assert.Zero(t, daily.RequestCount, "%+v", k)
			}
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		s := newStore(t)
		dk := w.dailyKey("user-1", operation.ContentGeneration)
		hk := w.hourlyKey("user-1", operation.ContentGeneration)

		const workers = 25
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.IncrementDaily(ctx, dk, 2))
				assert.NoError(t, s.IncrementHourly(ctx, hk))
			}()
		}
		wg.Wait()

		daily, err := s.GetDaily(ctx, dk)
		require.NoError(t, err)
		assert.Equal(t, DailyCounter{RequestCount: workers, CreditsUsed: 2 * workers}, daily)

		hourly, err := s.GetHourly(ctx, hk)
		require.NoError(t, err)
		assert.Equal(t, workers, hourly.RequestCount)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}
