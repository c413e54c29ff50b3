package model

import (
	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// APIBenchmarkSuite describes the metadata and policy of one benchmark
// suite.
type APIBenchmarkSuite struct {
	ID         *string        `json:"id"`
	Project    *string        `json:"project"`
	Suite      *string        `json:"suite"`
	RepoURL    *string        `json:"repo_url"`
	EntryCount int            `json:"entry_count"`
	LastUpdate int64          `json:"last_update"`
	Policy     APISuitePolicy `json:"policy"`
}

// Import transforms a BenchmarkSuite object into an APIBenchmarkSuite
// object.
func (apiSuite *APIBenchmarkSuite) Import(i interface{}) error {
	switch s := i.(type) {
	case dbmodel.BenchmarkSuite:
		apiSuite.ID = utility.ToStringPtr(s.ID)
		apiSuite.Project = utility.ToStringPtr(s.Project)
		apiSuite.Suite = utility.ToStringPtr(s.Suite)
		apiSuite.RepoURL = utility.ToStringPtr(s.RepoURL)
		apiSuite.EntryCount = s.EntryCount
		apiSuite.LastUpdate = s.LastUpdate
		apiSuite.Policy = getSuitePolicy(s.Policy)
	default:
		return errors.New("incorrect type when converting BenchmarkSuite type")
	}
	return nil
}

// Export transforms an APIBenchmarkSuite into a BenchmarkSuite.
func (apiSuite *APIBenchmarkSuite) Export() (interface{}, error) {
	return dbmodel.BenchmarkSuite{
		ID:         utility.FromStringPtr(apiSuite.ID),
		Project:    utility.FromStringPtr(apiSuite.Project),
		Suite:      utility.FromStringPtr(apiSuite.Suite),
		RepoURL:    utility.FromStringPtr(apiSuite.RepoURL),
		EntryCount: apiSuite.EntryCount,
		LastUpdate: apiSuite.LastUpdate,
		Policy:     apiSuite.Policy.export(),
	}, nil
}

// APISuitePolicy holds the retention and regression alerting configuration
// of a suite.
type APISuitePolicy struct {
	MaxEntries     int      `json:"max_entries"`
	AlertThreshold float64  `json:"alert_threshold"`
	NotifyOnAlert  bool     `json:"notify_on_alert"`
	BiggerIsBetter []string `json:"bigger_is_better,omitempty"`
}

func getSuitePolicy(p dbmodel.SuitePolicy) APISuitePolicy {
	return APISuitePolicy{
		MaxEntries:     p.MaxEntries,
		AlertThreshold: p.AlertThreshold,
		NotifyOnAlert:  p.NotifyOnAlert,
		BiggerIsBetter: p.BiggerIsBetter,
	}
}

func (p APISuitePolicy) export() dbmodel.SuitePolicy {
	return dbmodel.SuitePolicy{
		MaxEntries:     p.MaxEntries,
		AlertThreshold: p.AlertThreshold,
		NotifyOnAlert:  p.NotifyOnAlert,
		BiggerIsBetter: p.BiggerIsBetter,
	}
}
