package data

import (
	"context"
	"fmt"
	"net/http"
	"time"

	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/benchwatch/benchwatch/rest/model"
	"github.com/benchwatch/benchwatch/units"
	"github.com/benchwatch/benchwatch/util"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/amboy"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

func (dbc *DBConnector) AppendBenchmarkEntry(ctx context.Context, apiEntry *model.APIBenchmarkEntry) (*model.APIBenchmarkEntry, error) {
	exported, err := apiEntry.Export()
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("problem exporting benchmark entry: %s", err.Error()),
		}
	}
	in := exported.(dbmodel.BenchmarkEntry)

	entry := dbmodel.CreateBenchmarkEntry(in.Info, in.Commit, in.Benches)
	if in.Date > 0 {
		entry.Date = in.Date
	}
	entry.Setup(dbc.env)

	existing := &dbmodel.BenchmarkEntry{ID: entry.ID}
	existing.Setup(dbc.env)
	if err = existing.Find(ctx); err == nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    fmt.Sprintf("benchmark entry '%s' already exists", entry.ID),
		}
	}

	if err = entry.SaveNew(ctx); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem saving benchmark entry: %s", err.Error()),
		}
	}

	suite := &dbmodel.BenchmarkSuite{}
	suite.Setup(dbc.env)
	if err = suite.RecordEntry(ctx, entry); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem recording benchmark entry in suite: %s", err.Error()),
		}
	}

	dbc.scheduleFollowups(ctx, entry)

	out := &model.APIBenchmarkEntry{}
	if err = out.Import(*entry); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem importing benchmark entry: %s", err.Error()),
		}
	}

	return out, nil
}

// scheduleFollowups puts the regression check and dashboard publish jobs for
// a newly appended entry on the shared queue. Scheduling failures are logged
// rather than failing the append, the hourly sweeps pick up the slack.
func (dbc *DBConnector) scheduleFollowups(ctx context.Context, entry *dbmodel.BenchmarkEntry) {
	queue := dbc.queue()
	if queue == nil {
		return
	}

	ts := time.Now().Format(units.TSFormat)
	catcher := grip.NewBasicCatcher()
	catcher.Add(queue.Put(ctx, units.NewRegressionCheckJob(dbc.env, entry.ID)))
	catcher.Add(queue.Put(ctx, units.NewDashboardPublishJob(dbc.env, entry.Info.Project, entry.Info.Suite, ts)))

	grip.Warning(message.WrapError(catcher.Resolve(), message.Fields{
		"entry":   entry.ID,
		"project": entry.Info.Project,
		"suite":   entry.Info.Suite,
		"message": "problem scheduling follow-up jobs for benchmark entry",
	}))
}

func (dbc *DBConnector) queue() amboy.Queue {
	if q := dbc.env.GetRemoteQueue(); q != nil {
		return q
	}
	return dbc.env.GetLocalQueue()
}

func (dbc *DBConnector) FindBenchmarkEntryByID(ctx context.Context, id string) (*model.APIBenchmarkEntry, error) {
	entry := &dbmodel.BenchmarkEntry{ID: id}
	entry.Setup(dbc.env)
	if err := entry.Find(ctx); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("benchmark entry with id '%s' not found", id),
		}
	}

	apiEntry := &model.APIBenchmarkEntry{}
	if err := apiEntry.Import(*entry); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("corrupt benchmark entry with id '%s'", id),
		}
	}
	return apiEntry, nil
}

func (dbc *DBConnector) RemoveBenchmarkEntryByID(ctx context.Context, id string) (int, error) {
	entry := &dbmodel.BenchmarkEntry{ID: id}
	entry.Setup(dbc.env)
	if err := entry.Find(ctx); err != nil {
		if db.ResultsNotFound(errors.Cause(err)) {
			// Removing a nonexistent entry is a no-op so the CI re-run
			// flow can delete before re-appending unconditionally.
			return 0, nil
		}
		return -1, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem finding benchmark entry with id '%s'", id),
		}
	}

	removed, err := entry.Remove(ctx)
	if err != nil {
		return -1, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem removing benchmark entry with id '%s'", id),
		}
	}

	suite := &dbmodel.BenchmarkSuite{Project: entry.Info.Project, Suite: entry.Info.Suite}
	suite.Setup(dbc.env)
	if err = suite.RecordRemoval(ctx, removed); err != nil {
		return removed, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem recording removal in suite %s/%s", entry.Info.Project, entry.Info.Suite),
		}
	}

	return removed, nil
}

func (dbc *DBConnector) FindBenchmarkEntriesBySuite(ctx context.Context, project, suite string, interval util.TimeRange, limit int) ([]model.APIBenchmarkEntry, error) {
	entries := &dbmodel.BenchmarkEntries{}
	entries.Setup(dbc.env)

	opts := dbmodel.BenchmarkFindOptions{
		Project:  project,
		Suite:    suite,
		Interval: interval,
		Limit:    limit,
	}
	if err := entries.Find(ctx, opts); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem finding benchmark entries for suite %s/%s", project, suite),
		}
	}

	return importEntries(entries.Entries)
}

func (dbc *DBConnector) FindLatestBenchmarkEntry(ctx context.Context, project, suite string) (*model.APIBenchmarkEntry, error) {
	entries := &dbmodel.BenchmarkEntries{}
	entries.Setup(dbc.env)

	entry, err := entries.FindLatest(ctx, project, suite)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("no benchmark entries for suite %s/%s", project, suite),
		}
	}

	apiEntry := &model.APIBenchmarkEntry{}
	if err = apiEntry.Import(*entry); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrap(err, "problem importing benchmark entry").Error(),
		}
	}
	return apiEntry, nil
}

func (dbc *DBConnector) FindBenchmarkEntriesByCommit(ctx context.Context, commitID string) ([]model.APIBenchmarkEntry, error) {
	entries := &dbmodel.BenchmarkEntries{}
	entries.Setup(dbc.env)

	if err := entries.Find(ctx, dbmodel.BenchmarkFindOptions{CommitID: commitID}); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem finding benchmark entries for commit '%s'", commitID),
		}
	}
	if len(entries.Entries) == 0 {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("no benchmark entries for commit '%s'", commitID),
		}
	}

	return importEntries(entries.Entries)
}

func importEntries(entries []dbmodel.BenchmarkEntry) ([]model.APIBenchmarkEntry, error) {
	apiEntries := make([]model.APIBenchmarkEntry, len(entries))
	for i := range entries {
		if err := apiEntries[i].Import(entries[i]); err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusInternalServerError,
				Message:    errors.Wrap(err, "problem importing benchmark entry").Error(),
			}
		}
	}
	return apiEntries, nil
}
