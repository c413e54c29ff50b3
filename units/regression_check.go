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
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
)

const regressionCheckJobName = "benchmark-regression-check"

type regressionCheckJob struct {
	EntryID  string `bson:"entry_id" json:"entry_id" yaml:"entry_id"`
	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`
	env      benchwatch.Environment
}

func init() {
	registry.AddJobType(regressionCheckJobName, func() amboy.Job { return makeRegressionCheckJob() })
}

func makeRegressionCheckJob() *regressionCheckJob {
	j := &regressionCheckJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    regressionCheckJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

// NewRegressionCheckJob compares the benchmark entry with the given id
// against the previous entry of its suite and records an alert for every
// sample that regressed past the suite threshold.
func NewRegressionCheckJob(env benchwatch.Environment, entryID string) amboy.Job {
	j := makeRegressionCheckJob()
	j.env = env
	j.EntryID = entryID
	j.SetID(fmt.Sprintf("%s.%s", regressionCheckJobName, entryID))
	return j
}

func (j *regressionCheckJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = benchwatch.GetEnvironment()
	}

	conf := model.NewBenchwatchConfig(j.env)
	if err := conf.Find(ctx); err != nil {
		j.AddError(errors.Wrap(err, "problem getting application configuration"))
		return
	}
	if conf.Flags.DisableRegressionChecks {
		return
	}

	entry := &model.BenchmarkEntry{ID: j.EntryID}
	entry.Setup(j.env)
	if err := entry.Find(ctx); err != nil {
		j.AddError(errors.Wrap(err, "problem finding benchmark entry"))
		return
	}

	suite := &model.BenchmarkSuite{Project: entry.Info.Project, Suite: entry.Info.Suite}
	suite.Setup(j.env)
	if err := suite.Find(ctx); err != nil {
		j.AddError(errors.Wrap(err, "problem finding benchmark suite"))
		return
	}

	entries := &model.BenchmarkEntries{}
	entries.Setup(j.env)
	previous, err := entries.FindPrevious(ctx, entry)
	if err != nil {
		j.AddError(errors.Wrap(err, "problem finding previous benchmark entry"))
		return
	}
	if previous == nil {
		grip.Debug(message.Fields{
			"job":     j.ID(),
			"entry":   j.EntryID,
			"project": entry.Info.Project,
			"suite":   entry.Info.Suite,
			"message": "no previous entry, skipping regression check",
		})
		return
	}

	alerts := findRegressions(previous, entry, suite.Policy)
	for _, alert := range alerts {
		alert.Setup(j.env)
		j.AddError(errors.Wrap(alert.SaveNew(ctx), "problem saving regression alert"))
	}

	grip.InfoWhen(len(alerts) > 0, message.Fields{
		"job":      j.ID(),
		"entry":    j.EntryID,
		"project":  entry.Info.Project,
		"suite":    entry.Info.Suite,
		"previous": previous.Info.CommitID,
		"alerts":   len(alerts),
		"message":  "recorded benchmark regressions",
	})

	if len(alerts) > 0 && suite.Policy.NotifyOnAlert {
		j.AddError(j.notify(conf, entry, alerts))
	}
}

// findRegressions compares each sample of the current entry against the
// sample of the same name in the previous entry. A sample regresses when the
// worse-direction ratio exceeds the suite threshold. Samples with no
// counterpart in the previous entry, or where the ratio is undefined, are
// skipped.
func findRegressions(previous, current *model.BenchmarkEntry, policy model.SuitePolicy) []*model.RegressionAlert {
	prevByName := map[string]model.BenchSample{}
	for _, bench := range previous.Benches {
		prevByName[bench.Name] = bench
	}

	threshold := policy.Threshold()
	alerts := []*model.RegressionAlert{}
	for _, bench := range current.Benches {
		prev, ok := prevByName[bench.Name]
		if !ok {
			continue
		}

		biggerIsBetter := bench.BiggerIsBetter || policy.IsBiggerBetter(bench.Name)

		var ratio float64
		if biggerIsBetter {
			if bench.Value == 0 {
				continue
			}
			ratio = prev.Value / bench.Value
		} else {
			if prev.Value == 0 {
				continue
			}
			ratio = bench.Value / prev.Value
		}

		if ratio <= threshold {
			continue
		}

		alerts = append(alerts, model.CreateRegressionAlert(
			model.RegressionAlertInfo{
				Project:        current.Info.Project,
				Suite:          current.Info.Suite,
				CommitID:       current.Info.CommitID,
				PreviousCommit: previous.Info.CommitID,
				BenchName:      bench.Name,
			},
			prev.Value,
			bench.Value,
			ratio,
			bench.Unit,
		))
	}

	return alerts
}

func (j *regressionCheckJob) notify(conf *model.BenchwatchConfig, entry *model.BenchmarkEntry, alerts []*model.RegressionAlert) error {
	if conf.Slack.Token == "" || conf.Slack.Options == nil {
		return nil
	}

	sender, err := send.NewSlackLogger(conf.Slack.Options, conf.Slack.Token, send.LevelInfo{
		Default:   level.Warning,
		Threshold: level.Warning,
	})
	if err != nil {
		return errors.Wrap(err, "problem constructing slack sender")
	}
	defer func() {
		grip.Warning(errors.Wrap(sender.Close(), "problem closing slack sender"))
	}()

	lines := fmt.Sprintf("benchmark regression in %s/%s at %s:", entry.Info.Project, entry.Info.Suite, entry.Info.CommitID)
	for _, alert := range alerts {
		lines += fmt.Sprintf("\n- %s: %g -> %g %s (ratio %.2f)", alert.Info.BenchName, alert.Previous, alert.Current, alert.Unit, alert.Ratio)
	}
	sender.Send(message.NewDefaultMessage(level.Warning, lines))

	return nil
}
