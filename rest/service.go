package rest

import (
	"context"
	"net/http"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/rest/data"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/amboy"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

type Service struct {
	Port        int
	Prefix      string
	Environment benchwatch.Environment

	// internal settings
	queue amboy.Queue
	sc    data.Connector
	app   *gimlet.APIApp
}

func (s *Service) Validate() error {
	if s.Environment == nil {
		return errors.New("must specify an environment")
	}

	if s.queue == nil {
		s.queue = s.Environment.GetRemoteQueue()
		if s.queue == nil {
			s.queue = s.Environment.GetLocalQueue()
		}
		if s.queue == nil {
			return errors.New("no queue defined")
		}
	}

	if s.sc == nil {
		s.sc = data.CreateDBConnector(s.Environment)
	}

	if s.app == nil {
		s.app = gimlet.NewApp()
	}

	if s.Port == 0 {
		s.Port = 3000
	}

	if err := s.app.SetPort(s.Port); err != nil {
		return errors.WithStack(err)
	}

	if s.Prefix != "" {
		s.app.SetPrefix(s.Prefix)
	}

	return nil
}

func (s *Service) Start(ctx context.Context) error {
	if s.queue == nil || s.app == nil || s.sc == nil {
		return errors.New("application is not valid")
	}

	s.addMiddleware()
	s.addRoutes()

	if err := s.queue.Start(ctx); err != nil {
		return errors.Wrap(err, "problem starting queue")
	}

	if err := s.app.Resolve(); err != nil {
		return errors.Wrap(err, "problem resolving routes")
	}

	return s.app.Run(ctx)
}

func (s *Service) addMiddleware() {
	s.app.AddMiddleware(gimlet.MakeRecoveryLogger())

	// The dashboard document is consumed by browser-side chart renderers
	// hosted anywhere.
	s.app.AddMiddleware(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}))
}

func (s *Service) addRoutes() {
	s.app.AddRoute("/benchmarks").Version(1).Post().RouteHandler(makeAppendBenchmark(s.sc))
	s.app.AddRoute("/benchmarks/{id}").Version(1).Get().RouteHandler(makeGetBenchmarkByID(s.sc))
	s.app.AddRoute("/benchmarks/{id}").Version(1).Delete().RouteHandler(makeRemoveBenchmarkByID(s.sc))
	s.app.AddRoute("/benchmarks/suite/{project}/{suite}").Version(1).Get().RouteHandler(makeGetBenchmarksBySuite(s.sc))
	s.app.AddRoute("/benchmarks/suite/{project}/{suite}/latest").Version(1).Get().RouteHandler(makeGetLatestBenchmark(s.sc))
	s.app.AddRoute("/benchmarks/commit/{commit_id}").Version(1).Get().RouteHandler(makeGetBenchmarksByCommit(s.sc))
	s.app.AddRoute("/suites/{project}").Version(1).Get().RouteHandler(makeGetSuitesByProject(s.sc))
	s.app.AddRoute("/suites/{project}/{suite}/policy").Version(1).Post().RouteHandler(makeSetSuitePolicy(s.sc))
	s.app.AddRoute("/alerts/{project}/{suite}").Version(1).Get().RouteHandler(makeGetRegressionAlerts(s.sc))
	s.app.AddRoute("/dashboard/{project}/{suite}/data.js").Version(1).Get().RouteHandler(makeGetDashboardScript(s.sc))
	s.app.AddRoute("/dashboard/{project}/{suite}/data.json").Version(1).Get().RouteHandler(makeGetDashboardData(s.sc))
	s.app.AddRoute("/status").Version(1).Get().Handler(s.statusHandler)
	s.app.AddRoute("/admin/flags/{flagName}/enabled").Version(1).Post().Handler(s.setServiceFlagEnabled)
	s.app.AddRoute("/admin/flags/{flagName}/disabled").Version(1).Post().Handler(s.setServiceFlagDisabled)
}
