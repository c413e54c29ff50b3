package model

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/benchwatch/benchwatch/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDashboardData() *DashboardData {
	ts := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	return &DashboardData{
		LastUpdate: util.UnixMilli(ts),
		RepoURL:    "https://github.com/example/frametracker",
		Entries: map[string][]DashboardEntry{
			"encode": {
				{
					Commit: CommitInfo{
						ID:        "abcdef0123456789",
						Message:   "fix encode hot path",
						Timestamp: ts,
						URL:       "https://github.com/example/frametracker/commit/abcdef0123456789",
					},
					Date: util.UnixMilli(ts),
					Tool: "go",
					Benches: []BenchSample{
						{Name: "BenchmarkEncode", Value: 1523, Unit: "ns/op"},
						{Name: "BenchmarkThroughput", Value: 483, Unit: "MB/s", BiggerIsBetter: true},
					},
				},
			},
		},
	}
}

func TestDashboardRenderJSON(t *testing.T) {
	out, err := makeDashboardData().RenderJSON()
	require.NoError(t, err)

	// The top level keys are the fixed contract of the chart frontend.
	rendered := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(out, &rendered))
	assert.Contains(t, rendered, "lastUpdate")
	assert.Contains(t, rendered, "repoUrl")
	assert.Contains(t, rendered, "entries")

	entries := map[string][]DashboardEntry{}
	require.NoError(t, json.Unmarshal(rendered["entries"], &entries))
	require.Contains(t, entries, "encode")
	require.Len(t, entries["encode"], 1)
	assert.Equal(t, "go", entries["encode"][0].Tool)
	assert.Len(t, entries["encode"][0].Benches, 2)
}

func TestDashboardRenderJS(t *testing.T) {
	data := makeDashboardData()
	out, err := data.RenderJS()
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, []byte("window.BENCHMARK_DATA = ")))
	assert.True(t, bytes.HasSuffix(out, []byte("\n")))

	rendered := &DashboardData{}
	payload := bytes.TrimPrefix(out, []byte("window.BENCHMARK_DATA = "))
	require.NoError(t, json.Unmarshal(payload, rendered))
	assert.Equal(t, data.LastUpdate, rendered.LastUpdate)
	assert.Equal(t, data.RepoURL, rendered.RepoURL)
	assert.Equal(t, data.Entries, rendered.Entries)
}
