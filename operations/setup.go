package operations

import (
	"context"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/model"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.mongodb.org/mongo-driver/mongo"
)

// configure builds the application environment from command line flags,
// caches it globally, and returns it.
func configure(ctx context.Context, c *cli.Context, disableRemoteQueue bool) (benchwatch.Environment, error) {
	conf := &benchwatch.Configuration{
		MongoDBURI:         c.String(dbURIFlag),
		DatabaseName:       c.String(dbNameFlag),
		NumWorkers:         c.Int(numWorkersFlag),
		DisableRemoteQueue: disableRemoteQueue,
	}

	env, err := benchwatch.NewEnvironment(ctx, benchwatch.ServiceName, conf)
	if err != nil {
		return nil, errors.Wrap(err, "problem constructing application environment")
	}
	benchwatch.SetEnvironment(env)

	return env, nil
}

// bootstrapIndexes creates the indexes the models rely on. Index creation in
// mongodb is idempotent, re-running at startup is safe.
func bootstrapIndexes(ctx context.Context, env benchwatch.Environment) error {
	db := env.GetDB()

	for _, idx := range model.GetRequiredIndexes() {
		if _, err := db.Collection(idx.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.Keys}); err != nil {
			return errors.Wrapf(err, "problem creating index on collection %s", idx.Collection)
		}
	}

	return nil
}
