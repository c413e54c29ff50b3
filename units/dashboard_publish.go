package units

import (
	"context"
	"fmt"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/model"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/pkg/errors"
)

const dashboardPublishJobName = "benchmark-dashboard-publish"

type dashboardPublishJob struct {
	Project  string `bson:"project" json:"project" yaml:"project"`
	Suite    string `bson:"suite" json:"suite" yaml:"suite"`
	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`
	env      benchwatch.Environment
}

func init() {
	registry.AddJobType(dashboardPublishJobName, func() amboy.Job { return makeDashboardPublishJob() })
}

func makeDashboardPublishJob() *dashboardPublishJob {
	j := &dashboardPublishJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    dashboardPublishJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

// NewDashboardPublishJob renders the dashboard snapshot of the given suite
// and writes it to the configured bucket.
func NewDashboardPublishJob(env benchwatch.Environment, project, suite, ts string) amboy.Job {
	j := makeDashboardPublishJob()
	j.env = env
	j.Project = project
	j.Suite = suite
	j.SetID(fmt.Sprintf("%s.%s.%s.%s", dashboardPublishJobName, project, suite, ts))
	return j
}

func (j *dashboardPublishJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = benchwatch.GetEnvironment()
	}

	conf := model.NewBenchwatchConfig(j.env)
	if err := conf.Find(ctx); err != nil {
		j.AddError(errors.Wrap(err, "problem getting application configuration"))
		return
	}
	if conf.Flags.DisableDashboardPublish {
		return
	}
	if conf.Dashboard.Bucket == "" {
		return
	}

	j.AddError(errors.Wrapf(model.PublishDashboard(ctx, j.env, j.Project, j.Suite),
		"problem publishing dashboard for suite %s/%s", j.Project, j.Suite))
}
