package units

import (
	"context"
	"time"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/model"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/amboy"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// TSFormat is the timestamp layout used to deduplicate scheduled job IDs
// within a scheduling interval.
const TSFormat = "2006-01-02.15-04-05"

// StartCrons schedules the recurring background jobs: queue stats reporting
// every minute and the suite pruning and dashboard publishing sweeps every
// hour.
func StartCrons(ctx context.Context, env benchwatch.Environment) error {
	opts := amboy.QueueOperationConfig{
		ContinueOnError: true,
		LogErrors:       false,
		DebugLogging:    false,
	}

	local := env.GetLocalQueue()
	remote := env.GetRemoteQueue()
	if remote == nil {
		remote = local
	}

	grip.Info(message.Fields{
		"message": "starting background cron jobs",
		"opts":    opts,
		"started": message.Fields{
			"remote": remote.Info().Started,
			"local":  local.Info().Started,
		},
		"stats": message.Fields{
			"remote": remote.Stats(ctx),
			"local":  local.Stats(ctx),
		},
	})

	amboy.IntervalQueueOperation(ctx, local, time.Minute, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewBenchwatchConfig(env)
		if err := conf.Find(ctx); err != nil {
			return errors.WithStack(err)
		}

		if conf.Flags.DisableInternalMetricsReporting {
			return nil
		}

		ts := utility.RoundPartOfMinute(0).Format(TSFormat)
		return queue.Put(ctx, NewLocalAmboyStatsCollector(env, ts))
	})
	amboy.IntervalQueueOperation(ctx, remote, time.Minute, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewBenchwatchConfig(env)
		if err := conf.Find(ctx); err != nil {
			return errors.WithStack(err)
		}

		if conf.Flags.DisableInternalMetricsReporting {
			return nil
		}

		return queue.Put(ctx, NewRemoteAmboyStatsCollector(env, utility.RoundPartOfMinute(0).Format(TSFormat)))
	})
	amboy.IntervalQueueOperation(ctx, remote, time.Hour, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewBenchwatchConfig(env)
		if err := conf.Find(ctx); err != nil {
			return errors.WithStack(err)
		}
		if conf.Flags.DisableSuitePruning {
			return nil
		}

		return errors.WithStack(scheduleForAllSuites(ctx, env, queue, func(project, suite, ts string) amboy.Job {
			return NewSuitePruneJob(env, project, suite, ts)
		}))
	})
	amboy.IntervalQueueOperation(ctx, remote, time.Hour, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewBenchwatchConfig(env)
		if err := conf.Find(ctx); err != nil {
			return errors.WithStack(err)
		}
		if conf.Flags.DisableDashboardPublish {
			return nil
		}

		return errors.WithStack(scheduleForAllSuites(ctx, env, queue, func(project, suite, ts string) amboy.Job {
			return NewDashboardPublishJob(env, project, suite, ts)
		}))
	})

	return nil
}

func scheduleForAllSuites(ctx context.Context, env benchwatch.Environment, queue amboy.Queue, mkJob func(project, suite, ts string) amboy.Job) error {
	suites := &model.BenchmarkSuites{}
	suites.Setup(env)
	if err := suites.FindAll(ctx); err != nil {
		return errors.WithStack(err)
	}

	ts := utility.RoundPartOfHour(0).Format(TSFormat)
	catcher := grip.NewBasicCatcher()
	for _, suite := range suites.Suites {
		catcher.Add(queue.Put(ctx, mkJob(suite.Project, suite.Suite, ts)))
	}

	return catcher.Resolve()
}
