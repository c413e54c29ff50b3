package data

import (
	"context"
	"net/http"
	"testing"

	"github.com/benchwatch/benchwatch"
	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveBenchmarkEntryByID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := benchwatch.NewEnvironment(ctx, t.Name(), &benchwatch.Configuration{
		MongoDBURI:         "mongodb://localhost:27017",
		DatabaseName:       "benchwatch_test",
		NumWorkers:         2,
		DisableRemoteQueue: true,
	})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, env.GetDB().Drop(ctx))
		assert.NoError(t, env.Close(ctx))
	}()

	sc := CreateDBConnector(env)

	entry := dbmodel.CreateBenchmarkEntry(
		dbmodel.BenchmarkEntryInfo{
			Project:  utility.RandomString(),
			Suite:    utility.RandomString(),
			Tool:     "go",
			CommitID: "0000000000000000000000000000000000000001",
		},
		dbmodel.CommitInfo{
			ID:  "0000000000000000000000000000000000000001",
			URL: "https://github.com/benchwatch/benchwatch/commit/0000000000000000000000000000000000000001",
		},
		[]dbmodel.BenchSample{
			{Name: "BenchmarkSort", Value: 100, Unit: "ns/op"},
		},
	)
	entry.Setup(env)
	require.NoError(t, entry.SaveNew(ctx))
	suite := &dbmodel.BenchmarkSuite{}
	suite.Setup(env)
	require.NoError(t, suite.RecordEntry(ctx, entry))

	t.Run("NonexistentEntryIsNoop", func(t *testing.T) {
		removed, err := sc.RemoveBenchmarkEntryByID(ctx, "DNE")
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
	t.Run("BrokenConnectionIsInternalError", func(t *testing.T) {
		brokenCtx, brokenCancel := context.WithCancel(ctx)
		brokenCancel()

		removed, err := sc.RemoveBenchmarkEntryByID(brokenCtx, entry.ID)
		require.Error(t, err)
		assert.Equal(t, -1, removed)
		resp, ok := err.(gimlet.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	t.Run("RemovesExistingEntry", func(t *testing.T) {
		removed, err := sc.RemoveBenchmarkEntryByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		found := &dbmodel.BenchmarkEntry{ID: entry.ID}
		found.Setup(env)
		assert.Error(t, found.Find(ctx))
	})
}
