package operations

import (
	"strings"

	"github.com/urfave/cli"
)

////////////////////////////////////////////////////////////////////////
//
// Flag Name Constants

const (
	pathFlagName   = "path"
	outputFlagName = "output"

	numWorkersFlag = "workers"
	bucketNameFlag = "bucket"

	dbURIFlag  = "dbUri"
	dbNameFlag = "dbName"

	clientHostFlag = "host"
	clientPortFlag = "port"

	projectFlagName = "project"
	suiteFlagName   = "suite"

	flagNameFlag = "flag"
)

////////////////////////////////////////////////////////////////////////
//
// Utility Functions

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

////////////////////////////////////////////////////////////////////////
//
// Flag Groups

func addPathFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  joinFlagNames(pathFlagName, "filename", "file", "f"),
		Usage: "path to benchwatch input file",
	})
}

func addOutputPath(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  joinFlagNames(outputFlagName, "o"),
		Usage: "path to the output file",
		Value: "output.json",
	})
}

func addSuiteFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  projectFlagName,
			Usage: "name of the project the suite belongs to",
		},
		cli.StringFlag{
			Name:  suiteFlagName,
			Usage: "name of the benchmark suite",
		},
	)
}

func restServiceFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  clientHostFlag,
			Usage: "host for the remote benchwatch instance",
			Value: "http://localhost",
		},
		cli.IntFlag{
			Name:  clientPortFlag,
			Usage: "port for the remote benchwatch service",
			Value: 3000,
		},
	)
}

func dbFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:   dbURIFlag,
			Usage:  "specify a mongodb connection string",
			Value:  "mongodb://localhost:27017",
			EnvVar: "BENCHWATCH_MONGODB_URL",
		},
		cli.StringFlag{
			Name:   dbNameFlag,
			Usage:  "specify a database name to use",
			Value:  "benchwatch",
			EnvVar: "BENCHWATCH_DATABASE_NAME",
		})
}

func addModifyFeatureFlagFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  flagNameFlag,
		Usage: "specify the name of the flag to set",
	})
}

func baseFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.IntFlag{
			Name:  numWorkersFlag,
			Usage: "specify the number of worker jobs this process will have",
			Value: 2,
		},
		cli.StringFlag{
			Name:   bucketNameFlag,
			Usage:  "specify a bucket name to use for publishing dashboards",
			EnvVar: "BENCHWATCH_BUCKET_NAME",
		})
}
