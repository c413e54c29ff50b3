package operations

import (
	"context"
	"encoding/json"
	"os"

	"github.com/benchwatch/benchwatch/rest"
	restmodel "github.com/benchwatch/benchwatch/rest/model"
	"github.com/benchwatch/benchwatch/util"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Client returns the sub-command for interacting with a remote benchwatch
// service from the command line.
func Client() cli.Command {
	return cli.Command{
		Name:  "client",
		Usage: "interact with a remote benchwatch service",
		Subcommands: []cli.Command{
			appendBenchmarkEntry(),
			fetchDashboardScript(),
			serviceStatus(),
		},
	}
}

func restClient(c *cli.Context) (*rest.Client, error) {
	client, err := rest.NewClient(c.String(clientHostFlag), c.Int(clientPortFlag), "")

	return client, errors.Wrap(err, "problem creating REST client")
}

func appendBenchmarkEntry() cli.Command {
	return cli.Command{
		Name:   "append",
		Usage:  "append a benchmark entry from a json file to its suite history",
		Flags:  restServiceFlags(addPathFlag()...),
		Before: mergeBeforeFuncs(setFlagOrFirstPositional(pathFlagName), requireStringFlag(pathFlagName)),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			payload, err := os.ReadFile(c.String(pathFlagName))
			if err != nil {
				return errors.Wrapf(err, "problem reading input file %s", c.String(pathFlagName))
			}

			entry := &restmodel.APIBenchmarkEntry{}
			if err = json.Unmarshal(payload, entry); err != nil {
				return errors.Wrap(err, "problem parsing benchmark entry")
			}

			client, err := restClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			saved, err := client.AppendBenchmarkEntry(ctx, entry)
			if err != nil {
				return errors.Wrap(err, "problem appending benchmark entry")
			}

			grip.Infoln("appended benchmark entry:", utility.FromStringPtr(saved.ID))
			return nil
		},
	}
}

func fetchDashboardScript() cli.Command {
	return cli.Command{
		Name:  "export",
		Usage: "fetch the rendered data.js dashboard document for a suite",
		Flags: restServiceFlags(addSuiteFlags(addOutputPath()...)...),
		Before: mergeBeforeFuncs(
			requireStringFlag(projectFlagName),
			requireStringFlag(suiteFlagName)),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client, err := restClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			script, err := client.GetDashboardScript(ctx, c.String(projectFlagName), c.String(suiteFlagName))
			if err != nil {
				return errors.Wrap(err, "problem fetching dashboard script")
			}

			return errors.WithStack(util.WriteBytes(c.String(outputFlagName), script))
		},
	}
}

func serviceStatus() cli.Command {
	return cli.Command{
		Name:  "status",
		Usage: "get the status and queue statistics of the remote service",
		Flags: restServiceFlags(),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client, err := restClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			status, err := client.GetStatus(ctx)
			if err != nil {
				return errors.Wrap(err, "problem getting service status")
			}

			out, err := json.MarshalIndent(status, "", "   ")
			if err != nil {
				return errors.Wrap(err, "problem rendering service status")
			}
			grip.Info(string(out))

			return nil
		},
	}
}
