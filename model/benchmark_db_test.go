package model

import (
	"context"
	"fmt"
	"testing"

	"github.com/benchwatch/benchwatch"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestEnv(ctx context.Context, t *testing.T) benchwatch.Environment {
	env, err := benchwatch.NewEnvironment(ctx, t.Name(), &benchwatch.Configuration{
		MongoDBURI:         "mongodb://localhost:27017",
		DatabaseName:       "benchwatch_test",
		NumWorkers:         2,
		DisableRemoteQueue: true,
	})
	require.NoError(t, err)
	return env
}

func makeSuiteEntry(project, suite string, seq int, date int64) *BenchmarkEntry {
	entry := CreateBenchmarkEntry(
		BenchmarkEntryInfo{
			Project:  project,
			Suite:    suite,
			Tool:     "go",
			CommitID: fmt.Sprintf("%040d", seq),
		},
		CommitInfo{
			ID:      fmt.Sprintf("%040d", seq),
			Message: fmt.Sprintf("commit %d", seq),
			URL:     fmt.Sprintf("https://github.com/benchwatch/benchwatch/commit/%040d", seq),
		},
		[]BenchSample{
			{Name: "BenchmarkSort", Value: float64(100 + seq), Unit: "ns/op"},
		},
	)
	entry.Date = date
	return entry
}

func TestBenchmarkEntrySaveNew(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(ctx, t)
	defer func() {
		assert.NoError(t, env.GetDB().Collection(benchmarkEntryCollection).Drop(ctx))
		assert.NoError(t, env.Close(ctx))
	}()

	project := utility.RandomString()
	suite := utility.RandomString()

	t.Run("NoEnv", func(t *testing.T) {
		entry := makeSuiteEntry(project, suite, 1, 1000)
		assert.Error(t, entry.SaveNew(ctx))
	})
	t.Run("Unpopulated", func(t *testing.T) {
		entry := &BenchmarkEntry{ID: "unpopulated"}
		entry.Setup(env)
		assert.Error(t, entry.SaveNew(ctx))
	})
	t.Run("SavesAndFinds", func(t *testing.T) {
		entry := makeSuiteEntry(project, suite, 1, 1000)
		entry.Setup(env)
		require.NoError(t, entry.SaveNew(ctx))

		found := &BenchmarkEntry{ID: entry.ID}
		found.Setup(env)
		require.NoError(t, found.Find(ctx))
		assert.Equal(t, entry.Info, found.Info)
		assert.Equal(t, entry.Date, found.Date)
		assert.Equal(t, entry.Benches, found.Benches)
		assert.False(t, found.IsNil())
	})
	t.Run("DuplicateIDConflicts", func(t *testing.T) {
		duplicate := makeSuiteEntry(project, suite, 1, 2000)
		duplicate.Setup(env)
		err := duplicate.SaveNew(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		count, err := env.GetDB().Collection(benchmarkEntryCollection).CountDocuments(ctx, bson.M{"_id": duplicate.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		original := &BenchmarkEntry{ID: duplicate.ID}
		original.Setup(env)
		require.NoError(t, original.Find(ctx))
		assert.EqualValues(t, 1000, original.Date)
	})
}

func TestBenchmarkEntriesRemoveOldest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(ctx, t)
	defer func() {
		assert.NoError(t, env.GetDB().Collection(benchmarkEntryCollection).Drop(ctx))
		assert.NoError(t, env.Close(ctx))
	}()

	project := utility.RandomString()
	suite := utility.RandomString()
	otherSuite := utility.RandomString()

	for seq := 1; seq <= 5; seq++ {
		entry := makeSuiteEntry(project, suite, seq, int64(seq*1000))
		entry.Setup(env)
		require.NoError(t, entry.SaveNew(ctx))
	}
	other := makeSuiteEntry(project, otherSuite, 1, 1000)
	other.Setup(env)
	require.NoError(t, other.SaveNew(ctx))

	countSuite := func(t *testing.T) int64 {
		count, err := env.GetDB().Collection(benchmarkEntryCollection).CountDocuments(ctx, createEntriesFindQuery(BenchmarkFindOptions{Project: project, Suite: suite}))
		require.NoError(t, err)
		return count
	}

	t.Run("NoEnv", func(t *testing.T) {
		entries := &BenchmarkEntries{}
		_, err := entries.RemoveOldest(ctx, project, suite, 3)
		assert.Error(t, err)
	})
	t.Run("NonPositiveKeepIsNoop", func(t *testing.T) {
		entries := &BenchmarkEntries{}
		entries.Setup(env)
		removed, err := entries.RemoveOldest(ctx, project, suite, 0)
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.EqualValues(t, 5, countSuite(t))
	})
	t.Run("KeepAboveCountRemovesNothing", func(t *testing.T) {
		entries := &BenchmarkEntries{}
		entries.Setup(env)
		removed, err := entries.RemoveOldest(ctx, project, suite, 10)
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.EqualValues(t, 5, countSuite(t))
	})
	t.Run("RemovesOldestBeyondKeep", func(t *testing.T) {
		entries := &BenchmarkEntries{}
		entries.Setup(env)
		removed, err := entries.RemoveOldest(ctx, project, suite, 3)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		remaining := &BenchmarkEntries{}
		remaining.Setup(env)
		require.NoError(t, remaining.Find(ctx, BenchmarkFindOptions{Project: project, Suite: suite}))
		require.Len(t, remaining.Entries, 3)
		dates := []int64{}
		for _, entry := range remaining.Entries {
			dates = append(dates, entry.Date)
		}
		assert.Equal(t, []int64{3000, 4000, 5000}, dates)
	})
	t.Run("NeverRemovesBelowKeep", func(t *testing.T) {
		entries := &BenchmarkEntries{}
		entries.Setup(env)
		removed, err := entries.RemoveOldest(ctx, project, suite, 3)
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.EqualValues(t, 3, countSuite(t))
	})
	t.Run("OtherSuitesUntouched", func(t *testing.T) {
		count, err := env.GetDB().Collection(benchmarkEntryCollection).CountDocuments(ctx, createEntriesFindQuery(BenchmarkFindOptions{Project: project, Suite: otherSuite}))
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}
