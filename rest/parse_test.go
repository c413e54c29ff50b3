package rest

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		tr, err := parseTimeRange(url.Values{}, benchmarkStartAt, benchmarkEndAt)
		require.NoError(t, err)
		assert.True(t, tr.IsZero())
	})
	t.Run("StartOnly", func(t *testing.T) {
		vals := url.Values{}
		vals.Set(benchmarkStartAt, "2024-03-01T00:00:00Z")

		tr, err := parseTimeRange(vals, benchmarkStartAt, benchmarkEndAt)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), tr.StartAt)
		assert.WithinDuration(t, time.Now(), tr.EndAt, time.Minute)
	})
	t.Run("StartAndEnd", func(t *testing.T) {
		vals := url.Values{}
		vals.Set(benchmarkStartAt, "2024-03-01T00:00:00Z")
		vals.Set(benchmarkEndAt, "2024-03-02T00:00:00Z")

		tr, err := parseTimeRange(vals, benchmarkStartAt, benchmarkEndAt)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, tr.Duration())
		assert.True(t, tr.IsValid())
	})
	t.Run("MalformedStart", func(t *testing.T) {
		vals := url.Values{}
		vals.Set(benchmarkStartAt, "yesterday")

		_, err := parseTimeRange(vals, benchmarkStartAt, benchmarkEndAt)
		assert.Error(t, err)
	})
	t.Run("MalformedEnd", func(t *testing.T) {
		vals := url.Values{}
		vals.Set(benchmarkEndAt, "2024-03-02")

		_, err := parseTimeRange(vals, benchmarkStartAt, benchmarkEndAt)
		assert.Error(t, err)
	})
}
