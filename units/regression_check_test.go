package units

import (
	"testing"

	"github.com/benchwatch/benchwatch/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntryPair(prevBenches, curBenches []model.BenchSample) (*model.BenchmarkEntry, *model.BenchmarkEntry) {
	previous := &model.BenchmarkEntry{
		Info: model.BenchmarkEntryInfo{
			Project:  "frametracker",
			Suite:    "encode",
			CommitID: "commit-one",
		},
		Date:    1000,
		Benches: prevBenches,
	}
	current := &model.BenchmarkEntry{
		Info: model.BenchmarkEntryInfo{
			Project:  "frametracker",
			Suite:    "encode",
			CommitID: "commit-two",
		},
		Date:    2000,
		Benches: curBenches,
	}

	return previous, current
}

func TestFindRegressions(t *testing.T) {
	t.Run("NoRegression", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 100}},
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 150}},
		)
		assert.Empty(t, findRegressions(previous, current, model.SuitePolicy{}))
	})
	t.Run("SmallerIsBetterRegression", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 100, Unit: "ns/op"}},
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 250, Unit: "ns/op"}},
		)

		alerts := findRegressions(previous, current, model.SuitePolicy{})
		require.Len(t, alerts, 1)
		assert.Equal(t, "frametracker", alerts[0].Info.Project)
		assert.Equal(t, "encode", alerts[0].Info.Suite)
		assert.Equal(t, "commit-two", alerts[0].Info.CommitID)
		assert.Equal(t, "commit-one", alerts[0].Info.PreviousCommit)
		assert.Equal(t, "BenchmarkEncode", alerts[0].Info.BenchName)
		assert.Equal(t, float64(100), alerts[0].Previous)
		assert.Equal(t, float64(250), alerts[0].Current)
		assert.Equal(t, 2.5, alerts[0].Ratio)
		assert.Equal(t, "ns/op", alerts[0].Unit)
	})
	t.Run("ThresholdIsExclusive", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 100}},
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 200}},
		)
		assert.Empty(t, findRegressions(previous, current, model.SuitePolicy{}))
	})
	t.Run("CustomThreshold", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 100}},
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 130}},
		)
		policy := model.SuitePolicy{AlertThreshold: 1.2}
		alerts := findRegressions(previous, current, policy)
		require.Len(t, alerts, 1)
		assert.Equal(t, 1.3, alerts[0].Ratio)
	})
	t.Run("BiggerIsBetterSample", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkThroughput", Value: 500, BiggerIsBetter: true}},
			[]model.BenchSample{{Name: "BenchmarkThroughput", Value: 200, BiggerIsBetter: true}},
		)
		alerts := findRegressions(previous, current, model.SuitePolicy{})
		require.Len(t, alerts, 1)
		assert.Equal(t, 2.5, alerts[0].Ratio)
	})
	t.Run("BiggerIsBetterPolicy", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkThroughput", Value: 500}},
			[]model.BenchSample{{Name: "BenchmarkThroughput", Value: 200}},
		)
		policy := model.SuitePolicy{BiggerIsBetter: []string{"BenchmarkThroughput"}}
		alerts := findRegressions(previous, current, policy)
		require.Len(t, alerts, 1)
	})
	t.Run("MissingPreviousSampleSkipped", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkDecode", Value: 100}},
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 1000}},
		)
		assert.Empty(t, findRegressions(previous, current, model.SuitePolicy{}))
	})
	t.Run("ZeroPreviousValueSkipped", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 0}},
			[]model.BenchSample{{Name: "BenchmarkEncode", Value: 1000}},
		)
		assert.Empty(t, findRegressions(previous, current, model.SuitePolicy{}))
	})
	t.Run("ZeroCurrentValueSkippedForBiggerIsBetter", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{{Name: "BenchmarkThroughput", Value: 500, BiggerIsBetter: true}},
			[]model.BenchSample{{Name: "BenchmarkThroughput", Value: 0, BiggerIsBetter: true}},
		)
		assert.Empty(t, findRegressions(previous, current, model.SuitePolicy{}))
	})
	t.Run("MultipleRegressions", func(t *testing.T) {
		previous, current := makeEntryPair(
			[]model.BenchSample{
				{Name: "BenchmarkEncode", Value: 100},
				{Name: "BenchmarkDecode", Value: 50},
				{Name: "BenchmarkParse", Value: 10},
			},
			[]model.BenchSample{
				{Name: "BenchmarkEncode", Value: 300},
				{Name: "BenchmarkDecode", Value: 55},
				{Name: "BenchmarkParse", Value: 30},
			},
		)
		alerts := findRegressions(previous, current, model.SuitePolicy{})
		require.Len(t, alerts, 2)
		assert.Equal(t, "BenchmarkEncode", alerts[0].Info.BenchName)
		assert.Equal(t, "BenchmarkParse", alerts[1].Info.BenchName)
	})
}
