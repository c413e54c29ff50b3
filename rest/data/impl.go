package data

import (
	"github.com/benchwatch/benchwatch"
)

// DBConnector implements the Connector through interactions with the backing
// database.
type DBConnector struct {
	env benchwatch.Environment
}

func CreateDBConnector(env benchwatch.Environment) Connector {
	return &DBConnector{
		env: env,
	}
}
