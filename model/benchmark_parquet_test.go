package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToParquetSamples(t *testing.T) {
	entry := CreateBenchmarkEntry(
		BenchmarkEntryInfo{Project: "frametracker", Suite: "encode", Tool: "go"},
		CommitInfo{ID: "abcdef0123456789", Timestamp: time.Now()},
		[]BenchSample{
			{Name: "BenchmarkEncode", Value: 1523, Unit: "ns/op", Extra: "8 allocs/op"},
			{Name: "BenchmarkDecode", Value: 987.5},
		},
	)

	rows := entry.ConvertToParquetSamples()
	require.Len(t, rows, 2)

	t.Run("FullSample", func(t *testing.T) {
		row := rows[0]
		assert.Equal(t, "frametracker", row.Project)
		assert.Equal(t, "encode", row.Suite)
		assert.Equal(t, "go", row.Tool)
		assert.Equal(t, "abcdef0123456789", row.CommitID)
		assert.Equal(t, entry.Date, row.Date)
		assert.Equal(t, "BenchmarkEncode", row.BenchName)
		assert.Equal(t, float64(1523), row.Value)
		require.NotNil(t, row.Unit)
		assert.Equal(t, "ns/op", *row.Unit)
		require.NotNil(t, row.Extra)
		assert.Equal(t, "8 allocs/op", *row.Extra)
	})
	t.Run("OptionalFieldsOmitted", func(t *testing.T) {
		row := rows[1]
		assert.Equal(t, "BenchmarkDecode", row.BenchName)
		assert.Nil(t, row.Unit)
		assert.Nil(t, row.Extra)
	})
	t.Run("NoSamples", func(t *testing.T) {
		empty := &BenchmarkEntry{}
		assert.Empty(t, empty.ConvertToParquetSamples())
	})
}

func TestBenchmarkParquetSchema(t *testing.T) {
	// The schema and the row struct have to stay in sync by hand.
	for _, field := range []string{"project", "suite", "tool", "commit_id", "date", "bench_name", "value", "unit", "extra"} {
		assert.Contains(t, benchmarkParquetSchema, field)
	}
}
