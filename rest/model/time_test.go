package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPITimeMarshal(t *testing.T) {
	t.Run("RendersUTC", func(t *testing.T) {
		loc := time.FixedZone("UTC-5", -5*60*60)
		at := NewTime(time.Date(2024, time.March, 1, 7, 30, 15, 0, loc))

		out, err := json.Marshal(at)
		require.NoError(t, err)
		assert.Equal(t, `"2024-03-01T12:30:15.000Z"`, string(out))
	})
	t.Run("ZeroIsNull", func(t *testing.T) {
		out, err := json.Marshal(APITime(time.Time{}))
		require.NoError(t, err)
		assert.Equal(t, "null", string(out))
	})
}

func TestAPITimeUnmarshal(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		orig := NewTime(time.Date(2024, time.March, 1, 12, 30, 15, 0, time.UTC))
		out, err := json.Marshal(orig)
		require.NoError(t, err)

		parsed := APITime{}
		require.NoError(t, json.Unmarshal(out, &parsed))
		assert.True(t, orig.Time().Equal(parsed.Time()))
	})
	t.Run("Null", func(t *testing.T) {
		parsed := NewTime(time.Now())
		require.NoError(t, json.Unmarshal([]byte("null"), &parsed))
		assert.True(t, parsed.Time().IsZero())
	})
	t.Run("Malformed", func(t *testing.T) {
		parsed := APITime{}
		assert.Error(t, json.Unmarshal([]byte(`"2024-03-01"`), &parsed))
	})
}
