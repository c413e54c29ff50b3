package benchwatch

import (
	"errors"
	"time"

	"github.com/mongodb/grip"
)

// Configuration defines the resources the application environment is
// built from. It is assembled from command line flags before the
// environment is constructed.
type Configuration struct {
	DatabaseName       string
	MongoDBURI         string
	MongoDBDialTimeout time.Duration
	SocketTimeout      time.Duration
	DisableRemoteQueue bool
	NumWorkers         int
}

func (c *Configuration) Validate() error {
	catcher := grip.NewBasicCatcher()

	if c.MongoDBURI == "" {
		catcher.Add(errors.New("must specify a mongodb url"))
	}
	if c.NumWorkers < 1 {
		catcher.Add(errors.New("must specify a valid number of amboy workers"))
	}
	if c.DatabaseName == "" {
		c.DatabaseName = DefaultDatabase
	}
	if c.MongoDBDialTimeout <= 0 {
		c.MongoDBDialTimeout = 2 * time.Second
	}
	if c.SocketTimeout <= 0 {
		c.SocketTimeout = time.Minute
	}

	return catcher.Resolve()
}
