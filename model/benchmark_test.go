package model

import (
	"testing"
	"time"

	"github.com/benchwatch/benchwatch/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmarkEntryInfoID(t *testing.T) {
	info := BenchmarkEntryInfo{
		Project:  "frametracker",
		Suite:    "encode",
		Tool:     "go",
		CommitID: "abcdef0123456789",
	}

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, info.ID(), info.ID())
		assert.Len(t, info.ID(), 40)
	})
	t.Run("ChangesWithEachField", func(t *testing.T) {
		seen := map[string]bool{info.ID(): true}

		for _, modified := range []BenchmarkEntryInfo{
			{Project: "other", Suite: info.Suite, Tool: info.Tool, CommitID: info.CommitID},
			{Project: info.Project, Suite: "other", Tool: info.Tool, CommitID: info.CommitID},
			{Project: info.Project, Suite: info.Suite, Tool: "other", CommitID: info.CommitID},
			{Project: info.Project, Suite: info.Suite, Tool: info.Tool, CommitID: "other"},
		} {
			id := modified.ID()
			assert.False(t, seen[id])
			seen[id] = true
		}
	})
	t.Run("UnsupportedSchema", func(t *testing.T) {
		bad := info
		bad.Schema = 1
		assert.Panics(t, func() { _ = bad.ID() })
	})
}

func TestCreateBenchmarkEntry(t *testing.T) {
	commit := CommitInfo{
		ID:        "abcdef0123456789",
		Message:   "fix encode hot path",
		Timestamp: time.Now().Add(-time.Hour),
		URL:       "https://github.com/example/frametracker/commit/abcdef0123456789",
	}
	benches := []BenchSample{
		{Name: "BenchmarkEncode", Value: 1523, Unit: "ns/op"},
	}

	t.Run("PopulatesEntry", func(t *testing.T) {
		entry := CreateBenchmarkEntry(BenchmarkEntryInfo{Project: "frametracker", Suite: "encode", Tool: "go"}, commit, benches)
		require.NotNil(t, entry)
		assert.False(t, entry.IsNil())
		assert.Equal(t, entry.Info.ID(), entry.ID)
		assert.Equal(t, commit.ID, entry.Info.CommitID)
		assert.Equal(t, commit, entry.Commit)
		assert.Equal(t, benches, entry.Benches)
		assert.Equal(t, util.UnixMilli(entry.CreatedAt), entry.Date)
		assert.WithinDuration(t, time.Now(), entry.CreatedAt, time.Minute)
	})
	t.Run("ExplicitCommitIDWins", func(t *testing.T) {
		info := BenchmarkEntryInfo{Project: "frametracker", Suite: "encode", CommitID: "fedcba"}
		entry := CreateBenchmarkEntry(info, commit, benches)
		assert.Equal(t, "fedcba", entry.Info.CommitID)
	})
	t.Run("CopiesBenches", func(t *testing.T) {
		entry := CreateBenchmarkEntry(BenchmarkEntryInfo{Project: "p", Suite: "s"}, commit, benches)
		benches[0].Value = 9999
		assert.Equal(t, float64(1523), entry.Benches[0].Value)
		benches[0].Value = 1523
	})
}

func TestCommitInfoRepoURL(t *testing.T) {
	t.Run("CommitURL", func(t *testing.T) {
		c := CommitInfo{URL: "https://github.com/example/frametracker/commit/abcdef0123456789"}
		assert.Equal(t, "https://github.com/example/frametracker", c.RepoURL())
	})
	t.Run("NoCommitSegment", func(t *testing.T) {
		c := CommitInfo{URL: "https://github.com/example/frametracker"}
		assert.Equal(t, "https://github.com/example/frametracker", c.RepoURL())
	})
	t.Run("Empty", func(t *testing.T) {
		c := CommitInfo{}
		assert.Equal(t, "", c.RepoURL())
	})
}

func TestCreateEntriesFindQuery(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, createEntriesFindQuery(BenchmarkFindOptions{}))
	})
	t.Run("SuiteAndProject", func(t *testing.T) {
		search := createEntriesFindQuery(BenchmarkFindOptions{Project: "p", Suite: "s"})
		assert.Equal(t, "p", search["info.project"])
		assert.Equal(t, "s", search["info.suite"])
		assert.NotContains(t, search, "date")
	})
	t.Run("Interval", func(t *testing.T) {
		interval := util.GetTimeRange(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), time.Hour)
		search := createEntriesFindQuery(BenchmarkFindOptions{Project: "p", Interval: interval})
		assert.Contains(t, search, "date")
	})
}
