package data

import (
	"context"
	"fmt"
	"net/http"

	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/benchwatch/benchwatch/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/pkg/errors"
)

func (dbc *DBConnector) FindBenchmarkSuites(ctx context.Context, project string) ([]model.APIBenchmarkSuite, error) {
	suites := &dbmodel.BenchmarkSuites{}
	suites.Setup(dbc.env)

	if err := suites.FindByProject(ctx, project); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem finding benchmark suites for project '%s'", project),
		}
	}
	if len(suites.Suites) == 0 {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("no benchmark suites for project '%s'", project),
		}
	}

	apiSuites := make([]model.APIBenchmarkSuite, len(suites.Suites))
	for i := range suites.Suites {
		if err := apiSuites[i].Import(suites.Suites[i]); err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusInternalServerError,
				Message:    errors.Wrap(err, "problem importing benchmark suite").Error(),
			}
		}
	}
	return apiSuites, nil
}

func (dbc *DBConnector) SetSuitePolicy(ctx context.Context, project, suite string, apiPolicy model.APISuitePolicy) (*model.APIBenchmarkSuite, error) {
	s := &dbmodel.BenchmarkSuite{Project: project, Suite: suite}
	s.Setup(dbc.env)
	if err := s.Find(ctx); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("benchmark suite %s/%s not found", project, suite),
		}
	}

	policy := dbmodel.SuitePolicy{
		MaxEntries:     apiPolicy.MaxEntries,
		AlertThreshold: apiPolicy.AlertThreshold,
		NotifyOnAlert:  apiPolicy.NotifyOnAlert,
		BiggerIsBetter: apiPolicy.BiggerIsBetter,
	}
	if err := s.SetPolicy(ctx, policy); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem setting policy for suite %s/%s", project, suite),
		}
	}

	apiSuite := &model.APIBenchmarkSuite{}
	if err := apiSuite.Import(*s); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrap(err, "problem importing benchmark suite").Error(),
		}
	}
	return apiSuite, nil
}

func (dbc *DBConnector) FindRegressionAlerts(ctx context.Context, project, suite string, limit int) ([]model.APIRegressionAlert, error) {
	alerts := &dbmodel.RegressionAlerts{}
	alerts.Setup(dbc.env)

	if err := alerts.Find(ctx, project, suite, limit); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("problem finding regression alerts for suite %s/%s", project, suite),
		}
	}

	apiAlerts := make([]model.APIRegressionAlert, len(alerts.Alerts))
	for i := range alerts.Alerts {
		if err := apiAlerts[i].Import(alerts.Alerts[i]); err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusInternalServerError,
				Message:    errors.Wrap(err, "problem importing regression alert").Error(),
			}
		}
	}
	return apiAlerts, nil
}

func (dbc *DBConnector) GetDashboard(ctx context.Context, project, suite string) (*dbmodel.DashboardData, error) {
	data, err := dbmodel.BuildDashboard(ctx, dbc.env, project, suite)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("benchmark suite %s/%s not found", project, suite),
		}
	}
	return data, nil
}
