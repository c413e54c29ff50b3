package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/benchwatch/benchwatch/rest/data"
	"github.com/benchwatch/benchwatch/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

///////////////////////////////////////////////////////////////////////////////
//
// GET /suites/{project}

type suiteGetByProjectHandler struct {
	project string
	sc      data.Connector
}

func makeGetSuitesByProject(sc data.Connector) gimlet.RouteHandler {
	return &suiteGetByProjectHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new suiteGetByProjectHandler.
func (h *suiteGetByProjectHandler) Factory() gimlet.RouteHandler {
	return &suiteGetByProjectHandler{
		sc: h.sc,
	}
}

// Parse fetches the project from the http request.
func (h *suiteGetByProjectHandler) Parse(_ context.Context, r *http.Request) error {
	h.project = gimlet.GetVars(r)["project"]
	return nil
}

// Run calls the data FindBenchmarkSuites function and returns the suites
// from the provider.
func (h *suiteGetByProjectHandler) Run(ctx context.Context) gimlet.Responder {
	suites, err := h.sc.FindBenchmarkSuites(ctx, h.project)
	if err != nil {
		err = errors.Wrapf(err, "problem getting benchmark suites for project '%s'", h.project)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/suites/{project}",
			"project": h.project,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(suites)
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /suites/{project}/{suite}/policy

type suiteSetPolicyHandler struct {
	project string
	suite   string
	policy  model.APISuitePolicy
	sc      data.Connector
}

func makeSetSuitePolicy(sc data.Connector) gimlet.RouteHandler {
	return &suiteSetPolicyHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new suiteSetPolicyHandler.
func (h *suiteSetPolicyHandler) Factory() gimlet.RouteHandler {
	return &suiteSetPolicyHandler{
		sc: h.sc,
	}
}

// Parse fetches the project and suite from the http request and decodes the
// policy from the body.
func (h *suiteSetPolicyHandler) Parse(_ context.Context, r *http.Request) error {
	h.project = gimlet.GetVars(r)["project"]
	h.suite = gimlet.GetVars(r)["suite"]
	if err := gimlet.GetJSON(r.Body, &h.policy); err != nil {
		return errors.Wrap(err, "problem parsing suite policy")
	}
	if h.policy.AlertThreshold < 0 {
		return errors.New("alert threshold cannot be negative")
	}
	return nil
}

// Run calls the data SetSuitePolicy function and returns the updated suite
// from the provider.
func (h *suiteSetPolicyHandler) Run(ctx context.Context) gimlet.Responder {
	suite, err := h.sc.SetSuitePolicy(ctx, h.project, h.suite, h.policy)
	if err != nil {
		err = errors.Wrapf(err, "problem setting policy for suite '%s/%s'", h.project, h.suite)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "POST",
			"route":   "/suites/{project}/{suite}/policy",
			"project": h.project,
			"suite":   h.suite,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(suite)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /alerts/{project}/{suite}

type alertGetBySuiteHandler struct {
	project string
	suite   string
	limit   int
	sc      data.Connector
}

func makeGetRegressionAlerts(sc data.Connector) gimlet.RouteHandler {
	return &alertGetBySuiteHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new alertGetBySuiteHandler.
func (h *alertGetBySuiteHandler) Factory() gimlet.RouteHandler {
	return &alertGetBySuiteHandler{
		sc: h.sc,
	}
}

// Parse fetches the project and suite from the http request, plus the
// optional limit.
func (h *alertGetBySuiteHandler) Parse(_ context.Context, r *http.Request) error {
	h.project = gimlet.GetVars(r)["project"]
	h.suite = gimlet.GetVars(r)["suite"]

	limit := r.URL.Query().Get("limit")
	if limit != "" {
		var err error
		h.limit, err = strconv.Atoi(limit)
		return errors.Wrap(err, "problem parsing limit")
	}
	h.limit = 0
	return nil
}

// Run calls the data FindRegressionAlerts function and returns the alerts
// from the provider.
func (h *alertGetBySuiteHandler) Run(ctx context.Context) gimlet.Responder {
	alerts, err := h.sc.FindRegressionAlerts(ctx, h.project, h.suite, h.limit)
	if err != nil {
		err = errors.Wrapf(err, "problem getting regression alerts for suite '%s/%s'", h.project, h.suite)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/alerts/{project}/{suite}",
			"project": h.project,
			"suite":   h.suite,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(alerts)
}
