package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/benchwatch/benchwatch/rest/data"
	"github.com/benchwatch/benchwatch/rest/model"
	"github.com/benchwatch/benchwatch/util"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const (
	benchmarkStartAt = "started_after"
	benchmarkEndAt   = "finished_before"
)

///////////////////////////////////////////////////////////////////////////////
//
// POST /benchmarks

type benchmarkAppendHandler struct {
	entry *model.APIBenchmarkEntry
	sc    data.Connector
}

func makeAppendBenchmark(sc data.Connector) gimlet.RouteHandler {
	return &benchmarkAppendHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new benchmarkAppendHandler.
func (h *benchmarkAppendHandler) Factory() gimlet.RouteHandler {
	return &benchmarkAppendHandler{
		sc: h.sc,
	}
}

// Parse decodes the benchmark entry from the request body and rejects
// entries that cannot identify themselves or carry no samples.
func (h *benchmarkAppendHandler) Parse(_ context.Context, r *http.Request) error {
	h.entry = &model.APIBenchmarkEntry{}
	if err := gimlet.GetJSON(r.Body, h.entry); err != nil {
		return errors.Wrap(err, "problem parsing benchmark entry")
	}

	catcher := grip.NewBasicCatcher()
	if utility.FromStringPtr(h.entry.Info.Project) == "" {
		catcher.New("must specify a project")
	}
	if utility.FromStringPtr(h.entry.Info.Suite) == "" {
		catcher.New("must specify a suite")
	}
	if utility.FromStringPtr(h.entry.Info.CommitID) == "" && utility.FromStringPtr(h.entry.Commit.ID) == "" {
		catcher.New("must specify a commit id")
	}
	if len(h.entry.Benches) == 0 {
		catcher.New("must specify at least one benchmark sample")
	}

	return catcher.Resolve()
}

// Run calls the data AppendBenchmarkEntry function and returns the stored
// entry from the provider.
func (h *benchmarkAppendHandler) Run(ctx context.Context) gimlet.Responder {
	entry, err := h.sc.AppendBenchmarkEntry(ctx, h.entry)
	if err != nil {
		err = errors.Wrap(err, "problem appending benchmark entry")
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "POST",
			"route":   "/benchmarks",
			"project": utility.FromStringPtr(h.entry.Info.Project),
			"suite":   utility.FromStringPtr(h.entry.Info.Suite),
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(entry)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /benchmarks/{id}

type benchmarkGetByIDHandler struct {
	id string
	sc data.Connector
}

func makeGetBenchmarkByID(sc data.Connector) gimlet.RouteHandler {
	return &benchmarkGetByIDHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new benchmarkGetByIDHandler.
func (h *benchmarkGetByIDHandler) Factory() gimlet.RouteHandler {
	return &benchmarkGetByIDHandler{
		sc: h.sc,
	}
}

// Parse fetches the id from the http request.
func (h *benchmarkGetByIDHandler) Parse(_ context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

// Run calls the data FindBenchmarkEntryByID function and returns the
// benchmark entry from the provider.
func (h *benchmarkGetByIDHandler) Run(ctx context.Context) gimlet.Responder {
	entry, err := h.sc.FindBenchmarkEntryByID(ctx, h.id)
	if err != nil {
		err = errors.Wrapf(err, "problem getting benchmark entry by id '%s'", h.id)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/benchmarks/{id}",
			"id":      h.id,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(entry)
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /benchmarks/{id}

type benchmarkRemoveByIDHandler struct {
	id string
	sc data.Connector
}

func makeRemoveBenchmarkByID(sc data.Connector) gimlet.RouteHandler {
	return &benchmarkRemoveByIDHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new benchmarkRemoveByIDHandler.
func (h *benchmarkRemoveByIDHandler) Factory() gimlet.RouteHandler {
	return &benchmarkRemoveByIDHandler{
		sc: h.sc,
	}
}

// Parse fetches the id from the http request.
func (h *benchmarkRemoveByIDHandler) Parse(_ context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

// Run calls the data RemoveBenchmarkEntryByID function and returns the
// number of entries removed.
func (h *benchmarkRemoveByIDHandler) Run(ctx context.Context) gimlet.Responder {
	numRemoved, err := h.sc.RemoveBenchmarkEntryByID(ctx, h.id)
	if err != nil {
		err = errors.Wrapf(err, "problem removing benchmark entry by id '%s'", h.id)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "DELETE",
			"route":   "/benchmarks/{id}",
			"id":      h.id,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(fmt.Sprintf("Delete operation removed %d benchmark entries", numRemoved))
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /benchmarks/suite/{project}/{suite}

type benchmarkGetBySuiteHandler struct {
	project  string
	suite    string
	interval util.TimeRange
	limit    int
	sc       data.Connector
}

func makeGetBenchmarksBySuite(sc data.Connector) gimlet.RouteHandler {
	return &benchmarkGetBySuiteHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new benchmarkGetBySuiteHandler.
func (h *benchmarkGetBySuiteHandler) Factory() gimlet.RouteHandler {
	return &benchmarkGetBySuiteHandler{
		sc: h.sc,
	}
}

// Parse fetches the project and suite from the http request, plus the
// optional time range and limit.
func (h *benchmarkGetBySuiteHandler) Parse(_ context.Context, r *http.Request) error {
	h.project = gimlet.GetVars(r)["project"]
	h.suite = gimlet.GetVars(r)["suite"]
	vals := r.URL.Query()

	var err error
	catcher := grip.NewBasicCatcher()
	h.interval, err = parseTimeRange(vals, benchmarkStartAt, benchmarkEndAt)
	catcher.Add(err)
	limit := vals.Get("limit")
	if limit != "" {
		h.limit, err = strconv.Atoi(limit)
		catcher.Add(err)
	} else {
		h.limit = 0
	}
	return catcher.Resolve()
}

// Run calls the data FindBenchmarkEntriesBySuite function and returns the
// benchmark entries from the provider.
func (h *benchmarkGetBySuiteHandler) Run(ctx context.Context) gimlet.Responder {
	entries, err := h.sc.FindBenchmarkEntriesBySuite(ctx, h.project, h.suite, h.interval, h.limit)
	if err != nil {
		err = errors.Wrapf(err, "problem getting benchmark entries for suite '%s/%s'", h.project, h.suite)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/benchmarks/suite/{project}/{suite}",
			"project": h.project,
			"suite":   h.suite,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(entries)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /benchmarks/suite/{project}/{suite}/latest

type benchmarkGetLatestHandler struct {
	project string
	suite   string
	sc      data.Connector
}

func makeGetLatestBenchmark(sc data.Connector) gimlet.RouteHandler {
	return &benchmarkGetLatestHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new benchmarkGetLatestHandler.
func (h *benchmarkGetLatestHandler) Factory() gimlet.RouteHandler {
	return &benchmarkGetLatestHandler{
		sc: h.sc,
	}
}

// Parse fetches the project and suite from the http request.
func (h *benchmarkGetLatestHandler) Parse(_ context.Context, r *http.Request) error {
	h.project = gimlet.GetVars(r)["project"]
	h.suite = gimlet.GetVars(r)["suite"]
	return nil
}

// Run calls the data FindLatestBenchmarkEntry function and returns the
// benchmark entry from the provider.
func (h *benchmarkGetLatestHandler) Run(ctx context.Context) gimlet.Responder {
	entry, err := h.sc.FindLatestBenchmarkEntry(ctx, h.project, h.suite)
	if err != nil {
		err = errors.Wrapf(err, "problem getting latest benchmark entry for suite '%s/%s'", h.project, h.suite)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/benchmarks/suite/{project}/{suite}/latest",
			"project": h.project,
			"suite":   h.suite,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(entry)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /benchmarks/commit/{commit_id}

type benchmarkGetByCommitHandler struct {
	commitID string
	sc       data.Connector
}

func makeGetBenchmarksByCommit(sc data.Connector) gimlet.RouteHandler {
	return &benchmarkGetByCommitHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new benchmarkGetByCommitHandler.
func (h *benchmarkGetByCommitHandler) Factory() gimlet.RouteHandler {
	return &benchmarkGetByCommitHandler{
		sc: h.sc,
	}
}

// Parse fetches the commit_id from the http request.
func (h *benchmarkGetByCommitHandler) Parse(_ context.Context, r *http.Request) error {
	h.commitID = gimlet.GetVars(r)["commit_id"]
	return nil
}

// Run calls the data FindBenchmarkEntriesByCommit function and returns the
// benchmark entries from the provider.
func (h *benchmarkGetByCommitHandler) Run(ctx context.Context) gimlet.Responder {
	entries, err := h.sc.FindBenchmarkEntriesByCommit(ctx, h.commitID)
	if err != nil {
		err = errors.Wrapf(err, "problem getting benchmark entries by commit '%s'", h.commitID)
		grip.Error(message.WrapError(err, message.Fields{
			"request":   gimlet.GetRequestID(ctx),
			"method":    "GET",
			"route":     "/benchmarks/commit/{commit_id}",
			"commit_id": h.commitID,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(entries)
}
