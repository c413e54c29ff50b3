package operations

import (
	"context"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/model"
	"github.com/benchwatch/benchwatch/rest"
	"github.com/benchwatch/benchwatch/units"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Service returns the ./benchwatch service sub-command object, which is
// responsible for starting the REST service and its background jobs.
func Service() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "run the benchwatch api service",
		Flags: baseFlags(dbFlags(
			cli.BoolFlag{
				Name:  "localQueue",
				Usage: "uses a locally-backed queue rather than MongoDB",
			},
			cli.IntFlag{
				Name:   joinFlagNames(clientPortFlag, "p"),
				Usage:  "specify a port to run the service on",
				Value:  3000,
				EnvVar: "BENCHWATCH_SERVICE_PORT",
			})...),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := configure(ctx, c, c.Bool("localQueue"))
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() {
				grip.Warning(errors.Wrap(env.Close(ctx), "problem closing application environment"))
			}()

			if err = bootstrapIndexes(ctx, env); err != nil {
				return errors.Wrap(err, "problem bootstrapping indexes")
			}

			if bucket := c.String(bucketNameFlag); bucket != "" {
				if err = seedDashboardBucket(ctx, env, bucket); err != nil {
					return errors.Wrap(err, "problem configuring dashboard bucket")
				}
			}

			if err = env.GetLocalQueue().Start(ctx); err != nil {
				return errors.Wrap(err, "problem starting local queue")
			}
			if q := env.GetRemoteQueue(); q != nil {
				if err = q.Start(ctx); err != nil {
					return errors.Wrap(err, "problem starting remote queue")
				}
			}

			if err = units.StartCrons(ctx, env); err != nil {
				return errors.Wrap(err, "problem starting background jobs")
			}

			service := &rest.Service{
				Port:        c.Int(clientPortFlag),
				Environment: env,
			}
			if err = service.Validate(); err != nil {
				return errors.Wrap(err, "problem validating service")
			}

			grip.Noticef("starting benchwatch service on :%d", c.Int(clientPortFlag))
			if err = service.Start(ctx); err != nil {
				return errors.Wrap(err, "problem running rest service")
			}
			grip.Info("completed service, terminating.")
			return nil
		},
	}
}

// seedDashboardBucket writes the bucket name into the stored application
// configuration when no dashboard bucket is configured yet, so a fresh
// deployment can publish dashboards without a separate conf load step.
func seedDashboardBucket(ctx context.Context, env benchwatch.Environment, bucket string) error {
	conf := model.NewBenchwatchConfig(env)
	if err := conf.Find(ctx); err == nil && conf.Dashboard.Bucket != "" {
		return nil
	}

	return errors.WithStack(conf.SetDashboard(ctx, model.DashboardConfig{
		Type:   model.PailLocal,
		Bucket: bucket,
	}))
}
