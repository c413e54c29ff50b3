package model

import (
	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// APIBenchmarkEntry describes a single recorded benchmark run.
type APIBenchmarkEntry struct {
	ID        *string               `json:"id"`
	Info      APIBenchmarkEntryInfo `json:"info"`
	Commit    APICommitInfo         `json:"commit"`
	Date      int64                 `json:"date"`
	Benches   []APIBenchSample      `json:"benches"`
	CreatedAt APITime               `json:"created_at"`
}

// Import transforms a BenchmarkEntry object into an APIBenchmarkEntry
// object.
func (apiEntry *APIBenchmarkEntry) Import(i interface{}) error {
	switch e := i.(type) {
	case dbmodel.BenchmarkEntry:
		apiEntry.ID = utility.ToStringPtr(e.ID)
		apiEntry.Info = getBenchmarkEntryInfo(e.Info)
		apiEntry.Commit = getCommitInfo(e.Commit)
		apiEntry.Date = e.Date
		apiEntry.CreatedAt = NewTime(e.CreatedAt)

		var apiBenches []APIBenchSample
		for _, bench := range e.Benches {
			apiBenches = append(apiBenches, getBenchSample(bench))
		}
		apiEntry.Benches = apiBenches
	default:
		return errors.New("incorrect type when converting BenchmarkEntry type")
	}
	return nil
}

// Export transforms an APIBenchmarkEntry into a BenchmarkEntry.
func (apiEntry *APIBenchmarkEntry) Export() (interface{}, error) {
	entry := dbmodel.BenchmarkEntry{
		Info: dbmodel.BenchmarkEntryInfo{
			Project:  utility.FromStringPtr(apiEntry.Info.Project),
			Suite:    utility.FromStringPtr(apiEntry.Info.Suite),
			Tool:     utility.FromStringPtr(apiEntry.Info.Tool),
			CommitID: utility.FromStringPtr(apiEntry.Info.CommitID),
		},
		Commit: apiEntry.Commit.export(),
		Date:   apiEntry.Date,
	}
	for _, bench := range apiEntry.Benches {
		entry.Benches = append(entry.Benches, bench.export())
	}

	return entry, nil
}

// APIBenchmarkEntryInfo describes information unique to a single benchmark
// entry.
type APIBenchmarkEntryInfo struct {
	Project  *string `json:"project"`
	Suite    *string `json:"suite"`
	Tool     *string `json:"tool"`
	CommitID *string `json:"commit_id"`
}

func getBenchmarkEntryInfo(e dbmodel.BenchmarkEntryInfo) APIBenchmarkEntryInfo {
	return APIBenchmarkEntryInfo{
		Project:  utility.ToStringPtr(e.Project),
		Suite:    utility.ToStringPtr(e.Suite),
		Tool:     utility.ToStringPtr(e.Tool),
		CommitID: utility.ToStringPtr(e.CommitID),
	}
}

// APIGitUser identifies the author or committer of a commit.
type APIGitUser struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
}

// APICommitInfo describes the commit a benchmark entry was recorded for.
type APICommitInfo struct {
	Author    APIGitUser `json:"author"`
	Committer APIGitUser `json:"committer"`
	Distinct  bool       `json:"distinct"`
	ID        *string    `json:"id"`
	Message   *string    `json:"message"`
	Timestamp APITime    `json:"timestamp"`
	TreeID    *string    `json:"tree_id"`
	URL       *string    `json:"url"`
}

func getCommitInfo(c dbmodel.CommitInfo) APICommitInfo {
	return APICommitInfo{
		Author:    getGitUser(c.Author),
		Committer: getGitUser(c.Committer),
		Distinct:  c.Distinct,
		ID:        utility.ToStringPtr(c.ID),
		Message:   utility.ToStringPtr(c.Message),
		Timestamp: NewTime(c.Timestamp),
		TreeID:    utility.ToStringPtr(c.TreeID),
		URL:       utility.ToStringPtr(c.URL),
	}
}

func getGitUser(u dbmodel.GitUser) APIGitUser {
	return APIGitUser{
		Email:    utility.ToStringPtr(u.Email),
		Name:     utility.ToStringPtr(u.Name),
		Username: utility.ToStringPtr(u.Username),
	}
}

func (c APICommitInfo) export() dbmodel.CommitInfo {
	return dbmodel.CommitInfo{
		Author:    c.Author.export(),
		Committer: c.Committer.export(),
		Distinct:  c.Distinct,
		ID:        utility.FromStringPtr(c.ID),
		Message:   utility.FromStringPtr(c.Message),
		Timestamp: c.Timestamp.Time(),
		TreeID:    utility.FromStringPtr(c.TreeID),
		URL:       utility.FromStringPtr(c.URL),
	}
}

func (u APIGitUser) export() dbmodel.GitUser {
	return dbmodel.GitUser{
		Email:    utility.FromStringPtr(u.Email),
		Name:     utility.FromStringPtr(u.Name),
		Username: utility.FromStringPtr(u.Username),
	}
}

// APIBenchSample is a single named metric sample of a benchmark run.
type APIBenchSample struct {
	Name           *string `json:"name"`
	Value          float64 `json:"value"`
	Unit           *string `json:"unit"`
	Extra          *string `json:"extra,omitempty"`
	Range          *string `json:"range,omitempty"`
	BiggerIsBetter bool    `json:"bigger_is_better,omitempty"`
}

func getBenchSample(b dbmodel.BenchSample) APIBenchSample {
	return APIBenchSample{
		Name:           utility.ToStringPtr(b.Name),
		Value:          b.Value,
		Unit:           utility.ToStringPtr(b.Unit),
		Extra:          utility.ToStringPtr(b.Extra),
		Range:          utility.ToStringPtr(b.Range),
		BiggerIsBetter: b.BiggerIsBetter,
	}
}

func (b APIBenchSample) export() dbmodel.BenchSample {
	return dbmodel.BenchSample{
		Name:           utility.FromStringPtr(b.Name),
		Value:          b.Value,
		Unit:           utility.FromStringPtr(b.Unit),
		Extra:          utility.FromStringPtr(b.Extra),
		Range:          utility.FromStringPtr(b.Range),
		BiggerIsBetter: b.BiggerIsBetter,
	}
}
