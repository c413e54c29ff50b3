package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRange(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("Duration", func(t *testing.T) {
		tr := TimeRange{StartAt: start, EndAt: end}
		assert.Equal(t, time.Hour, tr.Duration())
		assert.True(t, tr.IsValid())
	})
	t.Run("Invalid", func(t *testing.T) {
		tr := TimeRange{StartAt: end, EndAt: start}
		assert.False(t, tr.IsValid())
	})
	t.Run("Zero", func(t *testing.T) {
		assert.True(t, TimeRange{}.IsZero())
		assert.False(t, TimeRange{StartAt: start}.IsZero())
		assert.False(t, TimeRange{EndAt: end}.IsZero())
	})
	t.Run("Check", func(t *testing.T) {
		tr := TimeRange{StartAt: start, EndAt: end}
		assert.True(t, tr.Check(start))
		assert.True(t, tr.Check(end))
		assert.True(t, tr.Check(start.Add(time.Minute)))
		assert.False(t, tr.Check(start.Add(-time.Minute)))
		assert.False(t, tr.Check(end.Add(time.Minute)))
	})
}

func TestGetTimeRange(t *testing.T) {
	t.Run("ZeroStartEndsNow", func(t *testing.T) {
		tr := GetTimeRange(time.Time{}, time.Hour)
		assert.True(t, tr.IsValid())
		assert.Equal(t, time.Hour, tr.Duration())
		assert.WithinDuration(t, time.Now(), tr.EndAt, time.Minute)
	})
	t.Run("ExplicitStart", func(t *testing.T) {
		start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		tr := GetTimeRange(start, 30*time.Minute)
		assert.Equal(t, start, tr.StartAt)
		assert.Equal(t, start.Add(30*time.Minute), tr.EndAt)
	})
}

func TestUnixMilli(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 12, 30, 15, 250e6, time.UTC)
	assert.Equal(t, ts.UnixNano()/1e6, UnixMilli(ts))
	assert.Equal(t, int64(250), UnixMilli(time.Unix(0, 250e6)))
}
