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
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const suitePruneJobName = "benchmark-suite-prune"

type suitePruneJob struct {
	Project  string `bson:"project" json:"project" yaml:"project"`
	Suite    string `bson:"suite" json:"suite" yaml:"suite"`
	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`
	env      benchwatch.Environment
}

func init() {
	registry.AddJobType(suitePruneJobName, func() amboy.Job { return makeSuitePruneJob() })
}

func makeSuitePruneJob() *suitePruneJob {
	j := &suitePruneJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    suitePruneJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

// NewSuitePruneJob enforces the retention cap of the given suite by deleting
// the oldest entries beyond the cap.
func NewSuitePruneJob(env benchwatch.Environment, project, suite, ts string) amboy.Job {
	j := makeSuitePruneJob()
	j.env = env
	j.Project = project
	j.Suite = suite
	j.SetID(fmt.Sprintf("%s.%s.%s.%s", suitePruneJobName, project, suite, ts))
	return j
}

func (j *suitePruneJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = benchwatch.GetEnvironment()
	}

	conf := model.NewBenchwatchConfig(j.env)
	if err := conf.Find(ctx); err != nil {
		j.AddError(errors.Wrap(err, "problem getting application configuration"))
		return
	}
	if conf.Flags.DisableSuitePruning {
		return
	}

	suite := &model.BenchmarkSuite{Project: j.Project, Suite: j.Suite}
	suite.Setup(j.env)
	if err := suite.Find(ctx); err != nil {
		j.AddError(errors.Wrap(err, "problem finding benchmark suite"))
		return
	}

	// A cap of zero or below means unlimited history.
	if suite.Policy.MaxEntries <= 0 {
		return
	}

	entries := &model.BenchmarkEntries{}
	entries.Setup(j.env)
	removed, err := entries.RemoveOldest(ctx, j.Project, j.Suite, suite.Policy.MaxEntries)
	if err != nil {
		j.AddError(errors.Wrap(err, "problem pruning benchmark entries"))
		return
	}
	if removed == 0 {
		return
	}

	if err = suite.RecordRemoval(ctx, removed); err != nil {
		j.AddError(errors.Wrap(err, "problem recording pruned entries"))
		return
	}

	grip.Info(message.Fields{
		"job":     j.ID(),
		"project": j.Project,
		"suite":   j.Suite,
		"cap":     suite.Policy.MaxEntries,
		"removed": removed,
		"message": "pruned benchmark suite history",
	})
}
