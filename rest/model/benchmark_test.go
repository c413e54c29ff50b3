package model

import (
	"testing"
	"time"

	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDBEntry() dbmodel.BenchmarkEntry {
	ts := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	return dbmodel.BenchmarkEntry{
		ID: "deadbeef",
		Info: dbmodel.BenchmarkEntryInfo{
			Project:  "frametracker",
			Suite:    "encode",
			Tool:     "go",
			CommitID: "abcdef0123456789",
		},
		Commit: dbmodel.CommitInfo{
			Author:    dbmodel.GitUser{Name: "Jamie", Email: "jamie@example.com", Username: "jamie"},
			Committer: dbmodel.GitUser{Name: "Jamie", Email: "jamie@example.com", Username: "jamie"},
			Distinct:  true,
			ID:        "abcdef0123456789",
			Message:   "fix encode hot path",
			Timestamp: ts,
			TreeID:    "tree123",
			URL:       "https://github.com/example/frametracker/commit/abcdef0123456789",
		},
		Date: 1709294400000,
		Benches: []dbmodel.BenchSample{
			{Name: "BenchmarkEncode", Value: 1523, Unit: "ns/op", Extra: "8 allocs/op", Range: "± 3%"},
			{Name: "BenchmarkThroughput", Value: 483, Unit: "MB/s", BiggerIsBetter: true},
		},
		CreatedAt: ts,
	}
}

func TestBenchmarkEntryImport(t *testing.T) {
	t.Run("ValidBenchmarkEntry", func(t *testing.T) {
		entry := makeDBEntry()
		apiEntry := &APIBenchmarkEntry{}
		require.NoError(t, apiEntry.Import(entry))

		assert.Equal(t, entry.ID, utility.FromStringPtr(apiEntry.ID))
		assert.Equal(t, entry.Info.Project, utility.FromStringPtr(apiEntry.Info.Project))
		assert.Equal(t, entry.Info.Suite, utility.FromStringPtr(apiEntry.Info.Suite))
		assert.Equal(t, entry.Info.Tool, utility.FromStringPtr(apiEntry.Info.Tool))
		assert.Equal(t, entry.Info.CommitID, utility.FromStringPtr(apiEntry.Info.CommitID))
		assert.Equal(t, entry.Commit.ID, utility.FromStringPtr(apiEntry.Commit.ID))
		assert.Equal(t, entry.Commit.Author.Name, utility.FromStringPtr(apiEntry.Commit.Author.Name))
		assert.True(t, entry.Commit.Timestamp.Equal(apiEntry.Commit.Timestamp.Time()))
		assert.Equal(t, entry.Date, apiEntry.Date)
		assert.True(t, entry.CreatedAt.Equal(apiEntry.CreatedAt.Time()))

		require.Len(t, apiEntry.Benches, 2)
		assert.Equal(t, "BenchmarkEncode", utility.FromStringPtr(apiEntry.Benches[0].Name))
		assert.Equal(t, float64(1523), apiEntry.Benches[0].Value)
		assert.Equal(t, "± 3%", utility.FromStringPtr(apiEntry.Benches[0].Range))
		assert.True(t, apiEntry.Benches[1].BiggerIsBetter)
	})
	t.Run("InvalidType", func(t *testing.T) {
		apiEntry := &APIBenchmarkEntry{}
		assert.Error(t, apiEntry.Import("not a benchmark entry"))
	})
}

func TestBenchmarkEntryExport(t *testing.T) {
	entry := makeDBEntry()
	apiEntry := &APIBenchmarkEntry{}
	require.NoError(t, apiEntry.Import(entry))

	exported, err := apiEntry.Export()
	require.NoError(t, err)
	out, ok := exported.(dbmodel.BenchmarkEntry)
	require.True(t, ok)

	// Export intentionally drops the server-assigned id and creation time.
	assert.Equal(t, entry.Info, out.Info)
	assert.Equal(t, entry.Commit, out.Commit)
	assert.Equal(t, entry.Date, out.Date)
	assert.Equal(t, entry.Benches, out.Benches)
}
