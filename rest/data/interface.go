package data

import (
	"context"

	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/benchwatch/benchwatch/rest/model"
	"github.com/benchwatch/benchwatch/util"
)

// Connector abstracts the link between the service and API layers, allowing
// for changes in the service architecture without forcing changes to the
// API.
type Connector interface {
	////////////////////
	// BenchmarkEntry
	////////////////////
	// AppendBenchmarkEntry stores a new benchmark entry and schedules the
	// follow-up regression check and dashboard publish jobs. Appending an
	// entry that already exists is a conflict.
	AppendBenchmarkEntry(context.Context, *model.APIBenchmarkEntry) (*model.APIBenchmarkEntry, error)
	// FindBenchmarkEntryByID returns the benchmark entry with the given
	// id.
	FindBenchmarkEntryByID(context.Context, string) (*model.APIBenchmarkEntry, error)
	// RemoveBenchmarkEntryByID removes the benchmark entry with the given
	// id and returns the number of entries removed.
	RemoveBenchmarkEntryByID(context.Context, string) (int, error)
	// FindBenchmarkEntriesBySuite returns the history of the given suite,
	// ascending by date, optionally restricted to a time range and entry
	// limit.
	FindBenchmarkEntriesBySuite(context.Context, string, string, util.TimeRange, int) ([]model.APIBenchmarkEntry, error)
	// FindLatestBenchmarkEntry returns the newest entry of the given
	// suite.
	FindLatestBenchmarkEntry(context.Context, string, string) (*model.APIBenchmarkEntry, error)
	// FindBenchmarkEntriesByCommit returns the entries recorded for the
	// given commit across all suites.
	FindBenchmarkEntriesByCommit(context.Context, string) ([]model.APIBenchmarkEntry, error)

	////////////////////
	// BenchmarkSuite
	////////////////////
	// FindBenchmarkSuites returns the suite metadata of the given project.
	FindBenchmarkSuites(context.Context, string) ([]model.APIBenchmarkSuite, error)
	// SetSuitePolicy replaces the retention and alerting policy of the
	// given suite.
	SetSuitePolicy(context.Context, string, string, model.APISuitePolicy) (*model.APIBenchmarkSuite, error)

	////////////////////
	// RegressionAlert
	////////////////////
	// FindRegressionAlerts returns the recorded regression alerts of the
	// given suite, newest first.
	FindRegressionAlerts(context.Context, string, string, int) ([]model.APIRegressionAlert, error)

	////////////////////
	// Dashboard
	////////////////////
	// GetDashboard assembles the chart renderer document for the given
	// suite.
	GetDashboard(context.Context, string, string) (*dbmodel.DashboardData, error)
}
