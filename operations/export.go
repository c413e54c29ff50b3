package operations

import (
	"context"

	"github.com/benchwatch/benchwatch/model"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Export returns the sub-command for exporting suite history out of the
// database for offline analysis.
func Export() cli.Command {
	return cli.Command{
		Name:  "export-parquet",
		Usage: "export the history of a benchmark suite to a parquet file",
		Flags: dbFlags(addSuiteFlags(
			cli.StringFlag{
				Name:  joinFlagNames(outputFlagName, "o"),
				Usage: "path to the output parquet file",
				Value: "benchmarks.parquet",
			})...),
		Before: mergeBeforeFuncs(
			requireStringFlag(projectFlagName),
			requireStringFlag(suiteFlagName)),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := configure(ctx, c, true)
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() {
				grip.Warning(errors.Wrap(env.Close(ctx), "problem closing application environment"))
			}()

			count, err := model.ExportParquet(ctx, env, c.String(projectFlagName), c.String(suiteFlagName), c.String(outputFlagName))
			if err != nil {
				return errors.Wrap(err, "problem exporting suite history")
			}

			grip.Infof("exported %d samples to %s", count, c.String(outputFlagName))
			return nil
		},
	}
}
