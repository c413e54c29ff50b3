package rest

import (
	"context"
	"net/http"

	"github.com/benchwatch/benchwatch/rest/data"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

///////////////////////////////////////////////////////////////////////////////
//
// GET /dashboard/{project}/{suite}/data.json

type dashboardDataHandler struct {
	project string
	suite   string
	sc      data.Connector
}

func makeGetDashboardData(sc data.Connector) gimlet.RouteHandler {
	return &dashboardDataHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new dashboardDataHandler.
func (h *dashboardDataHandler) Factory() gimlet.RouteHandler {
	return &dashboardDataHandler{
		sc: h.sc,
	}
}

// Parse fetches the project and suite from the http request.
func (h *dashboardDataHandler) Parse(_ context.Context, r *http.Request) error {
	h.project = gimlet.GetVars(r)["project"]
	h.suite = gimlet.GetVars(r)["suite"]
	return nil
}

// Run calls the data GetDashboard function and returns the raw chart
// document from the provider.
func (h *dashboardDataHandler) Run(ctx context.Context) gimlet.Responder {
	dashboard, err := h.sc.GetDashboard(ctx, h.project, h.suite)
	if err != nil {
		err = errors.Wrapf(err, "problem getting dashboard for suite '%s/%s'", h.project, h.suite)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/dashboard/{project}/{suite}/data.json",
			"project": h.project,
			"suite":   h.suite,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(dashboard)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /dashboard/{project}/{suite}/data.js

type dashboardScriptHandler struct {
	project string
	suite   string
	sc      data.Connector
}

func makeGetDashboardScript(sc data.Connector) gimlet.RouteHandler {
	return &dashboardScriptHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new dashboardScriptHandler.
func (h *dashboardScriptHandler) Factory() gimlet.RouteHandler {
	return &dashboardScriptHandler{
		sc: h.sc,
	}
}

// Parse fetches the project and suite from the http request.
func (h *dashboardScriptHandler) Parse(_ context.Context, r *http.Request) error {
	h.project = gimlet.GetVars(r)["project"]
	h.suite = gimlet.GetVars(r)["suite"]
	return nil
}

// Run calls the data GetDashboard function and renders the document as the
// script the chart frontend loads with a plain script tag.
func (h *dashboardScriptHandler) Run(ctx context.Context) gimlet.Responder {
	dashboard, err := h.sc.GetDashboard(ctx, h.project, h.suite)
	if err != nil {
		err = errors.Wrapf(err, "problem getting dashboard for suite '%s/%s'", h.project, h.suite)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/dashboard/{project}/{suite}/data.js",
			"project": h.project,
			"suite":   h.suite,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}

	script, err := dashboard.RenderJS()
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "problem rendering dashboard script"))
	}
	return gimlet.NewTextResponse(script)
}
