package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/benchwatch/benchwatch/rest/model"
	"github.com/benchwatch/benchwatch/util"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConnector returns canned responses so handlers can be exercised
// without a database.
type mockConnector struct {
	entry      *model.APIBenchmarkEntry
	entries    []model.APIBenchmarkEntry
	suites     []model.APIBenchmarkSuite
	suite      *model.APIBenchmarkSuite
	alerts     []model.APIRegressionAlert
	dashboard  *dbmodel.DashboardData
	numRemoved int
	err        error

	lastLimit    int
	lastInterval util.TimeRange
}

func (c *mockConnector) AppendBenchmarkEntry(_ context.Context, entry *model.APIBenchmarkEntry) (*model.APIBenchmarkEntry, error) {
	if c.err != nil {
		return nil, c.err
	}
	return entry, nil
}

func (c *mockConnector) FindBenchmarkEntryByID(_ context.Context, _ string) (*model.APIBenchmarkEntry, error) {
	return c.entry, c.err
}

func (c *mockConnector) RemoveBenchmarkEntryByID(_ context.Context, _ string) (int, error) {
	return c.numRemoved, c.err
}

func (c *mockConnector) FindBenchmarkEntriesBySuite(_ context.Context, _, _ string, interval util.TimeRange, limit int) ([]model.APIBenchmarkEntry, error) {
	c.lastInterval = interval
	c.lastLimit = limit
	return c.entries, c.err
}

func (c *mockConnector) FindLatestBenchmarkEntry(_ context.Context, _, _ string) (*model.APIBenchmarkEntry, error) {
	return c.entry, c.err
}

func (c *mockConnector) FindBenchmarkEntriesByCommit(_ context.Context, _ string) ([]model.APIBenchmarkEntry, error) {
	return c.entries, c.err
}

func (c *mockConnector) FindBenchmarkSuites(_ context.Context, _ string) ([]model.APIBenchmarkSuite, error) {
	return c.suites, c.err
}

func (c *mockConnector) SetSuitePolicy(_ context.Context, _, _ string, _ model.APISuitePolicy) (*model.APIBenchmarkSuite, error) {
	return c.suite, c.err
}

func (c *mockConnector) FindRegressionAlerts(_ context.Context, _, _ string, limit int) ([]model.APIRegressionAlert, error) {
	c.lastLimit = limit
	return c.alerts, c.err
}

func (c *mockConnector) GetDashboard(_ context.Context, _, _ string) (*dbmodel.DashboardData, error) {
	return c.dashboard, c.err
}

func makeAppendBody(t *testing.T, entry *model.APIBenchmarkEntry) *bytes.Buffer {
	payload, err := json.Marshal(entry)
	require.NoError(t, err)
	return bytes.NewBuffer(payload)
}

func validAppendEntry() *model.APIBenchmarkEntry {
	return &model.APIBenchmarkEntry{
		Info: model.APIBenchmarkEntryInfo{
			Project:  utility.ToStringPtr("frametracker"),
			Suite:    utility.ToStringPtr("encode"),
			CommitID: utility.ToStringPtr("abcdef0123456789"),
		},
		Benches: []model.APIBenchSample{
			{Name: utility.ToStringPtr("BenchmarkEncode"), Value: 1523, Unit: utility.ToStringPtr("ns/op")},
		},
	}
}

func TestAppendBenchmarkHandlerParse(t *testing.T) {
	ctx := context.Background()

	for _, test := range []struct {
		name   string
		mutate func(*model.APIBenchmarkEntry)
		hasErr bool
	}{
		{name: "ValidEntry"},
		{
			name:   "MissingProject",
			mutate: func(e *model.APIBenchmarkEntry) { e.Info.Project = nil },
			hasErr: true,
		},
		{
			name:   "MissingSuite",
			mutate: func(e *model.APIBenchmarkEntry) { e.Info.Suite = nil },
			hasErr: true,
		},
		{
			name:   "MissingCommitID",
			mutate: func(e *model.APIBenchmarkEntry) { e.Info.CommitID = nil },
			hasErr: true,
		},
		{
			name: "CommitIDFromCommitInfo",
			mutate: func(e *model.APIBenchmarkEntry) {
				e.Info.CommitID = nil
				e.Commit.ID = utility.ToStringPtr("abcdef0123456789")
			},
		},
		{
			name:   "NoSamples",
			mutate: func(e *model.APIBenchmarkEntry) { e.Benches = nil },
			hasErr: true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			entry := validAppendEntry()
			if test.mutate != nil {
				test.mutate(entry)
			}

			h := makeAppendBenchmark(&mockConnector{}).Factory().(*benchmarkAppendHandler)
			req := httptest.NewRequest(http.MethodPost, "/benchmarks", makeAppendBody(t, entry))

			err := h.Parse(ctx, req)
			if test.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAppendBenchmarkHandlerRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		sc := &mockConnector{}
		h := makeAppendBenchmark(sc).Factory().(*benchmarkAppendHandler)
		h.entry = validAppendEntry()

		resp := h.Run(ctx)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusOK, resp.Status())
	})
	t.Run("ConnectorError", func(t *testing.T) {
		sc := &mockConnector{err: errors.New("broken")}
		h := makeAppendBenchmark(sc).Factory().(*benchmarkAppendHandler)
		h.entry = validAppendEntry()

		resp := h.Run(ctx)
		require.NotNil(t, resp)
		assert.NotEqual(t, http.StatusOK, resp.Status())
	})
}

func TestGetBenchmarksBySuiteHandlerParse(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsToNoLimit", func(t *testing.T) {
		h := makeGetBenchmarksBySuite(&mockConnector{}).Factory().(*benchmarkGetBySuiteHandler)
		req := httptest.NewRequest(http.MethodGet, "/benchmarks/suite/p/s", nil)
		require.NoError(t, h.Parse(ctx, req))
		assert.Zero(t, h.limit)
		assert.True(t, h.interval.IsZero())
	})
	t.Run("ParsesLimitAndRange", func(t *testing.T) {
		h := makeGetBenchmarksBySuite(&mockConnector{}).Factory().(*benchmarkGetBySuiteHandler)
		req := httptest.NewRequest(http.MethodGet, "/benchmarks/suite/p/s?limit=10&started_after=2024-03-01T00:00:00Z", nil)
		require.NoError(t, h.Parse(ctx, req))
		assert.Equal(t, 10, h.limit)
		assert.False(t, h.interval.IsZero())
	})
	t.Run("MalformedLimit", func(t *testing.T) {
		h := makeGetBenchmarksBySuite(&mockConnector{}).Factory().(*benchmarkGetBySuiteHandler)
		req := httptest.NewRequest(http.MethodGet, "/benchmarks/suite/p/s?limit=ten", nil)
		assert.Error(t, h.Parse(ctx, req))
	})
}

func TestSetSuitePolicyHandlerParse(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidPolicy", func(t *testing.T) {
		h := makeSetSuitePolicy(&mockConnector{}).Factory().(*suiteSetPolicyHandler)
		body := bytes.NewBufferString(`{"max_entries": 50, "alert_threshold": 1.5}`)
		req := httptest.NewRequest(http.MethodPost, "/suites/p/s/policy", body)
		require.NoError(t, h.Parse(ctx, req))
		assert.Equal(t, 1.5, h.policy.AlertThreshold)
		assert.Equal(t, 50, h.policy.MaxEntries)
	})
	t.Run("NegativeThreshold", func(t *testing.T) {
		h := makeSetSuitePolicy(&mockConnector{}).Factory().(*suiteSetPolicyHandler)
		body := bytes.NewBufferString(`{"alert_threshold": -1}`)
		req := httptest.NewRequest(http.MethodPost, "/suites/p/s/policy", body)
		assert.Error(t, h.Parse(ctx, req))
	})
	t.Run("MalformedBody", func(t *testing.T) {
		h := makeSetSuitePolicy(&mockConnector{}).Factory().(*suiteSetPolicyHandler)
		req := httptest.NewRequest(http.MethodPost, "/suites/p/s/policy", bytes.NewBufferString("{"))
		assert.Error(t, h.Parse(ctx, req))
	})
}

func TestGetDashboardHandlers(t *testing.T) {
	ctx := context.Background()
	dashboard := &dbmodel.DashboardData{
		RepoURL: "https://github.com/example/frametracker",
		Entries: map[string][]dbmodel.DashboardEntry{"encode": {}},
	}

	t.Run("Data", func(t *testing.T) {
		h := makeGetDashboardData(&mockConnector{dashboard: dashboard}).Factory().(*dashboardDataHandler)
		resp := h.Run(ctx)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusOK, resp.Status())
	})
	t.Run("Script", func(t *testing.T) {
		h := makeGetDashboardScript(&mockConnector{dashboard: dashboard}).Factory().(*dashboardScriptHandler)
		resp := h.Run(ctx)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusOK, resp.Status())
	})
	t.Run("Error", func(t *testing.T) {
		h := makeGetDashboardData(&mockConnector{err: errors.New("broken")}).Factory().(*dashboardDataHandler)
		resp := h.Run(ctx)
		require.NotNil(t, resp)
		assert.NotEqual(t, http.StatusOK, resp.Status())
	})
}
