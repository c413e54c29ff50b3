package operations

import (
	"context"

	"github.com/benchwatch/benchwatch/model"
	"github.com/benchwatch/benchwatch/rest"
	"github.com/benchwatch/benchwatch/util"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Admin returns the sub-command for managing a deployed benchwatch
// application.
func Admin() cli.Command {
	return cli.Command{
		Name:  "admin",
		Usage: "manage a deployed benchwatch application",
		Subcommands: []cli.Command{
			{
				Name:  "conf",
				Usage: "benchwatch application configuration",
				Subcommands: []cli.Command{
					loadBenchwatchConfig(),
					dumpBenchwatchConfig(),
				},
			},
			{
				Name:  "flags",
				Usage: "manage benchwatch feature flags over a rest interface",
				Subcommands: []cli.Command{
					setFeatureFlag(),
					unsetFeatureFlag(),
				},
			},
		},
	}
}

func loadBenchwatchConfig() cli.Command {
	return cli.Command{
		Name:  "load",
		Usage: "loads benchwatch application configuration from a yaml file",
		Flags: dbFlags(
			cli.StringFlag{
				Name:  "file",
				Usage: "specify path to a benchwatch application config file",
			}),
		Before: requireStringFlag("file"),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := configure(ctx, c, true)
			if err != nil {
				return errors.WithStack(err)
			}

			conf, err := model.LoadBenchwatchConfig(c.String("file"))
			if err != nil {
				return errors.WithStack(err)
			}
			conf.Setup(env)

			if err = conf.Save(ctx); err != nil {
				return errors.WithStack(err)
			}

			grip.Infoln("successfully saved application configuration to database at:", c.String(dbURIFlag))
			return nil
		},
	}
}

func dumpBenchwatchConfig() cli.Command {
	return cli.Command{
		Name:  "dump",
		Usage: "write current benchwatch application configuration to a file",
		Flags: dbFlags(
			cli.StringFlag{
				Name:  "file",
				Usage: "specify path to the output file",
				Value: "benchwatch-config.json",
			}),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := configure(ctx, c, true)
			if err != nil {
				return errors.WithStack(err)
			}

			conf := model.NewBenchwatchConfig(env)
			if err = conf.Find(ctx); err != nil {
				return errors.WithStack(err)
			}

			return errors.WithStack(util.WriteJSON(c.String("file"), conf))
		},
	}
}

func setFeatureFlag() cli.Command {
	return cli.Command{
		Name:   "set",
		Usage:  "set a named feature flag",
		Flags:  restServiceFlags(addModifyFeatureFlagFlags()...),
		Before: mergeBeforeFuncs(setFlagOrFirstPositional(flagNameFlag), requireStringFlag(flagNameFlag)),
		Action: func(c *cli.Context) error {
			flag := c.String(flagNameFlag)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client, err := rest.NewClient(c.String(clientHostFlag), c.Int(clientPortFlag), "")
			if err != nil {
				return errors.Wrap(err, "problem creating REST client")
			}

			state, err := client.EnableFeatureFlag(ctx, flag)
			if err != nil {
				return errors.Wrapf(err, "problem encountered setting flag '%s', reported state %t", flag, state)
			}
			grip.Infof("successfully set '%s' to '%t'", flag, state)
			return nil
		},
	}
}

func unsetFeatureFlag() cli.Command {
	return cli.Command{
		Name:   "unset",
		Usage:  "unset a named feature flag",
		Flags:  restServiceFlags(addModifyFeatureFlagFlags()...),
		Before: mergeBeforeFuncs(setFlagOrFirstPositional(flagNameFlag), requireStringFlag(flagNameFlag)),
		Action: func(c *cli.Context) error {
			flag := c.String(flagNameFlag)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client, err := rest.NewClient(c.String(clientHostFlag), c.Int(clientPortFlag), "")
			if err != nil {
				return errors.Wrap(err, "problem creating REST client")
			}

			state, err := client.DisableFeatureFlag(ctx, flag)
			if err != nil {
				return errors.Wrapf(err, "problem encountered unsetting flag '%s', reported state %t", flag, state)
			}
			grip.Infof("successfully set '%s' to '%t'", flag, state)
			return nil
		},
	}
}
