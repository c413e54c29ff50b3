package benchwatch

import (
	"context"
	"sync"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/queue"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var globalEnv *envState

func init() {
	globalEnv = &envState{name: "global", conf: &Configuration{}, ctx: context.Background()}
}

// GetEnvironment returns the global application environment.
func GetEnvironment() Environment { return globalEnv }

// SetEnvironment sets the global application environment, typically for
// testing purposes.
func SetEnvironment(env Environment) {
	if e, ok := env.(*envState); ok {
		globalEnv = e
	}
}

// Environment objects provide access to shared configuration and state in a
// way that can be isolated and tested for.
type Environment interface {
	GetConf() *Configuration
	Context() (context.Context, context.CancelFunc)

	// The Environment maintains a cached mongodb client and database
	// handle for use by models and jobs.
	GetClient() *mongo.Client
	GetDB() *mongo.Database

	// The local queue executes jobs in the current process, while the
	// remote queue is backed by the database and shared between all
	// service processes.
	GetLocalQueue() amboy.Queue
	GetRemoteQueue() amboy.Queue
	SetLocalQueue(amboy.Queue) error
	SetRemoteQueue(amboy.Queue) error

	Close(context.Context) error
}

// NewEnvironment constructs an application environment from the given
// configuration, connecting to the database and constructing the queues.
func NewEnvironment(ctx context.Context, name string, conf *Configuration) (Environment, error) {
	env := &envState{name: name}

	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	env.conf = conf

	var err error
	env.ctx, env.cancel = context.WithCancel(ctx)

	env.client, err = mongo.Connect(env.ctx, options.Client().
		ApplyURI(conf.MongoDBURI).
		SetConnectTimeout(conf.MongoDBDialTimeout).
		SetSocketTimeout(conf.SocketTimeout))
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to db %s", conf.MongoDBURI)
	}

	connctx, cancel := context.WithTimeout(env.ctx, conf.MongoDBDialTimeout)
	defer cancel()
	if err = env.client.Ping(connctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "problem checking db connection")
	}

	env.localQueue = queue.NewLocalLimitedSize(conf.NumWorkers, 1024)
	grip.Infof("configured local queue with %d workers", conf.NumWorkers)

	if !conf.DisableRemoteQueue {
		opts := queue.DefaultMongoDBOptions()
		opts.URI = conf.MongoDBURI
		opts.DB = conf.DatabaseName
		opts.Collection = QueueName

		env.remoteQueue, err = queue.NewMongoDBQueue(env.ctx, queue.MongoDBQueueOptions{
			DB:         &opts,
			NumWorkers: utility.ToIntPtr(conf.NumWorkers),
		})
		if err != nil {
			return nil, errors.Wrap(err, "problem configuring remote queue")
		}

		grip.Info(message.Fields{
			"message": "configured a remote mongodb-backed queue",
			"db":      conf.DatabaseName,
			"prefix":  QueueName,
		})
	}

	return env, nil
}

type envState struct {
	name        string
	conf        *Configuration
	client      *mongo.Client
	localQueue  amboy.Queue
	remoteQueue amboy.Queue
	ctx         context.Context
	cancel      context.CancelFunc
	mutex       sync.RWMutex
}

func (c *envState) GetConf() *Configuration {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.conf == nil {
		return nil
	}

	// copy the struct
	out := &Configuration{}
	*out = *c.conf

	return out
}

func (c *envState) Context() (context.Context, context.CancelFunc) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithTimeout(ctx, time.Minute)
}

func (c *envState) GetClient() *mongo.Client {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.client
}

func (c *envState) GetDB() *mongo.Database {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.client == nil || c.conf == nil {
		return nil
	}

	return c.client.Database(c.conf.DatabaseName)
}

func (c *envState) GetLocalQueue() amboy.Queue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.localQueue
}

func (c *envState) GetRemoteQueue() amboy.Queue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.remoteQueue
}

func (c *envState) SetLocalQueue(q amboy.Queue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.localQueue != nil {
		return errors.New("queue exists, cannot overwrite")
	}
	if q == nil {
		return errors.New("cannot set queue to nil")
	}

	c.localQueue = q
	grip.Noticef("caching a '%T' local queue in the '%s' service cache for use in tasks", q, c.name)
	return nil
}

func (c *envState) SetRemoteQueue(q amboy.Queue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.remoteQueue != nil {
		return errors.New("queue exists, cannot overwrite")
	}
	if q == nil {
		return errors.New("cannot set queue to nil")
	}

	c.remoteQueue = q
	grip.Noticef("caching a '%T' remote queue in the '%s' service cache for use in tasks", q, c.name)
	return nil
}

func (c *envState) Close(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	catcher := grip.NewBasicCatcher()
	if c.localQueue != nil {
		c.localQueue.Close(ctx)
	}
	if c.remoteQueue != nil {
		c.remoteQueue.Close(ctx)
	}
	if c.client != nil {
		catcher.Add(c.client.Disconnect(ctx))
	}
	if c.cancel != nil {
		c.cancel()
	}

	return catcher.Resolve()
}
